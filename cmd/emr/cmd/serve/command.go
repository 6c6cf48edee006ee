// Package serve provides the serve command for the emr CLI.
package serve

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/emrhub/emr/cmd/application"
	"github.com/emrhub/emr/internal/server"
)

// NewCommand creates the serve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server", "start"},
		Short:   "Start the EMR HTTP server",
		Long: `Start the EMR HTTP server.

Routes:
  GET /         Welcome to the Home Page of EMR
  GET /patient  Welcome to the Patient Page

Settings come from flags, then environment variables (PORT, API_KEY and
EMR_-prefixed names such as EMR_HOST), then .env.local and .env, then the
config file, then defaults. The API key check is off unless --auth or
EMR_AUTH_ENABLED is set.`,
		Example: `  # Start on the default port 5000
  emr serve

  # Start on a custom port
  PORT=8080 emr serve
  emr serve --port 8080

  # Require the API key in the X-API-Key header
  API_KEY=s3cret emr serve --auth

  # Enable rate limiting
  emr serve --rate-limit 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, cmd.OutOrStdout(), parseConfig(cmd, app))
		},
	}

	defaults := server.FromConfig(app.Config())

	// Server configuration flags
	cmd.Flags().Int("port", defaults.Port, "Server port (0 picks a free port)")
	cmd.Flags().String("host", defaults.Host, "Bind address (empty binds all interfaces)")

	// CORS flags
	cmd.Flags().Bool("cors", defaults.CORSEnabled, "Enable CORS")
	cmd.Flags().StringSlice("cors-origins", defaults.CORSOrigins, "Allowed CORS origins (comma-separated, empty allows all)")

	// Authentication flags
	cmd.Flags().Bool("auth", defaults.AuthEnabled, "Require the API key on every request")
	cmd.Flags().String("auth-header", defaults.AuthHeader, "Header carrying the API key")

	// Performance flags
	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")

	// Timeout flags
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().Duration("shutdown-timeout", defaults.ShutdownTimeout, "Graceful shutdown timeout")

	return cmd
}

// Run starts the server and blocks until ctx is cancelled. The startup line
// is written to out.
func Run(ctx context.Context, app application.Application, out io.Writer, cfg server.Config) error {
	logger := app.Logger()

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Int("rate_limit", cfg.RateLimit).
		Msg("Starting EMR server")

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	logger.Debug().
		Str("addr", srv.Addr()).
		Dur("read_timeout", cfg.ReadTimeout).
		Dur("write_timeout", cfg.WriteTimeout).
		Dur("idle_timeout", cfg.IdleTimeout).
		Msg("Creating HTTP server")

	return srv.ListenAndServe(ctx, out)
}

// parseConfig starts from the resolved application config and applies only
// the flags that were set explicitly.
func parseConfig(cmd *cobra.Command, app application.Application) server.Config {
	cfg := server.FromConfig(app.Config())
	flags := cmd.Flags()

	if flags.Changed("port") {
		cfg.Port = mustGetInt(cmd, "port")
	}
	if flags.Changed("host") {
		cfg.Host = mustGetString(cmd, "host")
	}
	if flags.Changed("cors") {
		cfg.CORSEnabled = mustGetBool(cmd, "cors")
	}
	if flags.Changed("cors-origins") {
		cfg.CORSOrigins = mustGetStringSlice(cmd, "cors-origins")
		cfg.CORSEnabled = true
	}
	if flags.Changed("auth") {
		cfg.AuthEnabled = mustGetBool(cmd, "auth")
	}
	if flags.Changed("auth-header") {
		cfg.AuthHeader = mustGetString(cmd, "auth-header")
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = mustGetInt(cmd, "rate-limit")
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout = mustGetDuration(cmd, "read-timeout")
	}
	if flags.Changed("write-timeout") {
		cfg.WriteTimeout = mustGetDuration(cmd, "write-timeout")
	}
	if flags.Changed("idle-timeout") {
		cfg.IdleTimeout = mustGetDuration(cmd, "idle-timeout")
	}
	if flags.Changed("shutdown-timeout") {
		cfg.ShutdownTimeout = mustGetDuration(cmd, "shutdown-timeout")
	}

	return cfg
}

// mustGetInt retrieves an integer flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetStringSlice retrieves a string slice flag value or panics if the flag doesn't exist.
func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

// mustGetDuration retrieves a duration flag value or panics if the flag doesn't exist.
func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}
