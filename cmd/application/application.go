// Package application provides the application interface for emr commands.
//
// Commands accept this interface rather than the concrete App type so they
// can be tested with Mock:
//
//	mock := &application.Mock{
//	    ConfigFunc: func() *config.Config {
//	        cfg := config.Default()
//	        cfg.Port = 0
//	        return cfg
//	    },
//	}
//	cmd := serve.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/emrhub/emr/internal/config"
)

// Application provides the application interface that commands need.
// The App struct from cmd/emr/app implements it.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Config returns the resolved configuration. Callers must not modify it.
	Config() *config.Config

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	// Empty means auto-detect.
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
