// Package server provides the HTTP server for emr: the static route table,
// the middleware chain and the listener lifecycle.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/emrhub/emr/internal/server/middleware"
	"github.com/emrhub/emr/pkg/errors"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	config  Config
	logger  *zerolog.Logger
	limiter *middleware.RateLimiter
	handler http.Handler
}

// New creates a new server instance with the given configuration.
func New(cfg Config, logger *zerolog.Logger) (*Server, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Msg("Creating new server instance")

	s := &Server{
		config: cfg,
		logger: logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}
	s.handler = s.setupRouter()

	logger.Debug().Msg("Server instance created successfully")
	return s, nil
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Routes returns the route table this server serves.
func (s *Server) Routes() []Route {
	return Routes()
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}

// Addr returns the host:port the server binds.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return nil, errors.WrapResource("listen", "socket", s.Addr(), err)
	}
	return ln, nil
}

// ListenAndServe binds the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, out io.Writer) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, out)
}

// Serve accepts connections on ln, writes the startup line to out and blocks
// until ctx is cancelled or the server fails. On cancellation in-flight
// requests are drained for at most ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener, out io.Writer) error {
	httpServer := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	port := listenerPort(ln)

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Int("port", port).
		Bool("auth", s.config.AuthEnabled).
		Bool("cors", s.config.CORSEnabled).
		Int("rate_limit", s.config.RateLimit).
		Msg("HTTP server listening")

	if out != nil {
		if _, err := fmt.Fprintf(out, "Server is running on http://localhost:%d\n", port); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to write startup line")
		}
	}

	select {
	case err, ok := <-serverErr:
		if !ok {
			return nil
		}
		return errors.WrapResource("serve", "server", ln.Addr().String(), err)
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received via context")

		// The parent context is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.WrapResource("shutdown", "server", ln.Addr().String(), err)
		}

		s.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.ShutdownTimeout <= 0 {
		return DefaultConfig().ShutdownTimeout
	}
	return s.config.ShutdownTimeout
}

// listenerPort returns the bound TCP port, which differs from the configured
// one when port 0 was requested.
func listenerPort(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(portStr)
	return port
}
