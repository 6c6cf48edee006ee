package server

import (
	"fmt"
	"time"

	"github.com/emrhub/emr/internal/config"
	"github.com/emrhub/emr/pkg/constants"
	"github.com/emrhub/emr/pkg/errors"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int // 0 picks an ephemeral port

	// Authentication settings (inactive unless AuthEnabled)
	APIKey      string
	AuthEnabled bool
	AuthHeader  string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	// Requests per minute per client IP (0 to disable)
	RateLimit int

	// HTTP timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "",
		Port:            constants.DefaultPort,
		APIKey:          constants.DefaultAPIKey,
		AuthEnabled:     false,
		AuthHeader:      constants.DefaultAuthHeader,
		CORSEnabled:     false,
		CORSOrigins:     []string{},
		RateLimit:       0,
		ReadTimeout:     constants.DefaultReadTimeout,
		WriteTimeout:    constants.DefaultWriteTimeout,
		IdleTimeout:     constants.DefaultIdleTimeout,
		ShutdownTimeout: constants.DefaultShutdownTimeout,
	}
}

// FromConfig builds the server configuration from the application config.
func FromConfig(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		APIKey:          cfg.APIKey,
		AuthEnabled:     cfg.AuthEnabled,
		AuthHeader:      cfg.AuthHeader,
		CORSEnabled:     cfg.CORSEnabled,
		CORSOrigins:     append([]string(nil), cfg.CORSOrigins...),
		RateLimit:       cfg.RateLimit,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > constants.MaxPort {
		return errors.NewValidationError("port", c.Port, fmt.Sprintf("must be between 0 and %d", constants.MaxPort))
	}
	if c.RateLimit < 0 {
		return errors.NewValidationError("rate_limit", c.RateLimit, "must not be negative")
	}
	if c.AuthEnabled {
		if c.AuthHeader == "" {
			return errors.NewValidationError("auth_header", c.AuthHeader, "required when auth is enabled")
		}
		if c.APIKey == "" {
			return errors.NewValidationError("api_key", "", "required when auth is enabled")
		}
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"idle_timeout":     c.IdleTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d < 0 {
			return errors.NewValidationError(name, d, "must not be negative")
		}
	}
	return nil
}
