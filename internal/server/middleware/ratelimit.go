package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/emrhub/emr/internal/server/cache"
	"github.com/emrhub/emr/internal/server/response"
	"github.com/emrhub/emr/pkg/constants"
	"github.com/emrhub/emr/pkg/errors"
)

// RateLimiter allows a fixed number of requests per window per client.
// Client state lives in a TTL cache so idle clients are evicted.
type RateLimiter struct {
	visitors *cache.Cache
	limit    int           // requests per window
	window   time.Duration // counting window
	logger   *zerolog.Logger
}

// visitor tracks rate limit state for a single client.
type visitor struct {
	mu        sync.Mutex
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per minute per client.
func NewRateLimiter(limit int, logger *zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		visitors: cache.New(constants.VisitorTTL, constants.CacheCleanupInterval),
		limit:    limit,
		window:   constants.RateLimitWindow,
		logger:   logger,
	}
}

// Allow reports whether a request from client fits in the current window.
func (rl *RateLimiter) Allow(client string) bool {
	v := rl.getVisitor(client)

	v.mu.Lock()
	defer v.mu.Unlock()

	if time.Since(v.lastReset) >= rl.window {
		v.tokens = rl.limit
		v.lastReset = time.Now()
	}

	if v.tokens > 0 {
		v.tokens--
		return true
	}
	return false
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	return rl.visitors.ItemCount()
}

func (rl *RateLimiter) getVisitor(client string) *visitor {
	fresh := &visitor{tokens: rl.limit, lastReset: time.Now()}
	v, _ := rl.visitors.GetOrAdd(client, fresh)
	return v.(*visitor)
}

// RateLimit middleware limits requests per client IP.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if !rl.Allow(ip) {
				rl.logger.Warn().
					Err(errors.ErrRateLimited).
					Str("ip", ip).
					Str("path", r.URL.Path).
					Int("clients", rl.Clients()).
					Msg("Rate limit exceeded")

				response.ErrorFromType(w, errors.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then the remote host.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
