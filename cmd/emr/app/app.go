// Package app provides the application context and dependency management
// for the emr CLI: configuration, logging, version information and the
// lifecycle of the commands built on top of them.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/emrhub/emr/cmd/application"
	"github.com/emrhub/emr/internal/config"
)

// App represents the emr application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	mu     sync.RWMutex
	config *config.Config
	logger *zerolog.Logger

	// loadOpts are reused when --config asks for a reload
	loadOpts     []config.Option
	customLogger bool

	out    io.Writer
	errOut io.Writer
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment unless WithConfig is given.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		cfg, err := config.Load(app.loadOpts...)
		if err != nil {
			return nil, err
		}
		app.config = cfg
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.Config().Format
}

// Shutdown performs graceful shutdown of the application. The server stops
// itself when the command context is cancelled, so only a final log line
// remains.
func (a *App) Shutdown(_ context.Context) error {
	a.Logger().Debug().Msg("Application shutdown")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLoadOptions passes options to config.Load.
func WithLoadOptions(opts ...config.Option) Option {
	return func(a *App) error {
		a.loadOpts = append(a.loadOpts, opts...)
		return nil
	}
}

// WithLogger sets a custom logger. It is kept even when flags change the
// log level.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.customLogger = true
		return nil
	}
}

// WithOutput sets the writers commands print to.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) error {
		a.out = out
		a.errOut = errOut
		return nil
	}
}
