package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emrhub/emr/internal/server/response"
	"github.com/emrhub/emr/pkg/constants"
	"github.com/emrhub/emr/pkg/errors"
)

// AuthConfig holds API-key check configuration.
type AuthConfig struct {
	Enabled     bool
	APIKey      string
	HeaderName  string
	PublicPaths []string
}

// DefaultAuthConfig returns the default configuration: disabled, so request
// headers have no effect on responses.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:     false,
		APIKey:      constants.DefaultAPIKey,
		HeaderName:  constants.DefaultAuthHeader,
		PublicPaths: []string{},
	}
}

// Auth rejects requests whose API key does not match with 403 Forbidden.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			if isPublicPath(r.URL.Path, config.PublicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := extractAPIKey(r, config)
			if !keysMatch(apiKey, config.APIKey) {
				cause := errors.ErrAPIKeyInvalid
				if apiKey == "" {
					cause = errors.ErrAPIKeyRequired
				}
				err := errors.NewAuthenticationError(
					"api_key",
					"Provide a valid API key in the "+headerName(config)+" header",
					cause,
				)
				logger.Warn().
					Err(cause).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("Authentication failed")

				response.ErrorFromType(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// keysMatch compares in constant time; an empty key never matches.
func keysMatch(provided, expected string) bool {
	if provided == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

// isPublicPath checks if a path is in the public paths list.
func isPublicPath(path string, publicPaths []string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

func headerName(config AuthConfig) string {
	if config.HeaderName == "" {
		return constants.DefaultAuthHeader
	}
	return config.HeaderName
}

// extractAPIKey reads the configured header, then Authorization.
func extractAPIKey(r *http.Request, config AuthConfig) string {
	if apiKey := r.Header.Get(headerName(config)); apiKey != "" {
		return apiKey
	}

	auth := r.Header.Get("Authorization")
	if auth != "" {
		// Support both "Bearer <key>" and raw key
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
		return auth
	}

	return ""
}
