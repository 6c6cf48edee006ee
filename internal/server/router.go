package server

import (
	"net/http"

	"github.com/emrhub/emr/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	s.registerRoutes(mux)

	return s.applyMiddleware(mux)
}

// registerRoutes registers the static route table. Anything unmatched falls
// through to the ServeMux defaults: 404 for unknown paths, 405 for known
// paths with another method.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	for _, route := range s.Routes() {
		mux.Handle(route.Pattern(), route.Handler())
		s.logger.Debug().
			Str("method", route.Method).
			Str("path", route.Path).
			Msg("Route registered")
	}
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: RequestID, Recovery, Logger, CORS, Auth, RateLimit, mux.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}

	if s.config.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(s.config.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = s.config.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		corsConfig.AllowedHeaders = appendUnique(corsConfig.AllowedHeaders, s.config.AuthHeader)
		chain = append(chain, middleware.CORS(corsConfig))
	}

	authConfig := middleware.DefaultAuthConfig()
	authConfig.Enabled = s.config.AuthEnabled
	authConfig.APIKey = s.config.APIKey
	if s.config.AuthHeader != "" {
		authConfig.HeaderName = s.config.AuthHeader
	}
	chain = append(chain, middleware.Auth(authConfig, s.logger))

	if s.limiter != nil {
		chain = append(chain, middleware.RateLimit(s.limiter))
	}

	return middleware.Chain(chain...)(handler)
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, v := range list {
		if http.CanonicalHeaderKey(v) == http.CanonicalHeaderKey(value) {
			return list
		}
	}
	return append(list, value)
}
