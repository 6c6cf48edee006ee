package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestRateLimiter_Allow tests the per-client budget.
func TestRateLimiter_Allow(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(3, &logger)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("4th request should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients keep their own budget")
	}
	if got := rl.Clients(); got != 2 {
		t.Errorf("Clients() = %d, want 2", got)
	}
}

// TestRateLimiter_WindowReset tests that the budget refills after the window.
func TestRateLimiter_WindowReset(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(1, &logger)
	rl.window = 50 * time.Millisecond

	if !rl.Allow("client") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("client") {
		t.Fatal("second request should be rejected")
	}

	time.Sleep(80 * time.Millisecond)

	if !rl.Allow("client") {
		t.Error("request after window should be allowed")
	}
}

// TestRateLimiter_Concurrent verifies the budget holds under contention.
func TestRateLimiter_Concurrent(t *testing.T) {
	logger := zerolog.Nop()
	rl := NewRateLimiter(10, &logger)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("allowed %d requests, want 10", allowed)
	}
}

// TestRateLimit_Middleware tests the 429 response.
func TestRateLimit_Middleware(t *testing.T) {
	logger := zerolog.Nop()
	handler := RateLimit(NewRateLimiter(2, &logger))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status %d, want %d", i+1, codes[i], want[i])
		}
	}
}

// TestClientIP tests client identification.
func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote host without port", "192.0.2.1:1234", "", "192.0.2.1"},
		{"ipv6 remote", "[2001:db8::1]:443", "", "2001:db8::1"},
		{"unparseable remote", "pipe", "", "pipe"},
		{"first forwarded hop", "10.0.0.1:80", "203.0.113.5, 10.0.0.1", "203.0.113.5"},
		{"blank forwarded falls back", "10.0.0.1:80", " ", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
