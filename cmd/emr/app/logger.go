package app

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/emrhub/emr/internal/config"
	"github.com/emrhub/emr/pkg/logging"
)

// NewLogger creates a configured logger based on the application configuration.
// Log level precedence (highest to lowest):
//  1. --log-level flag or EMR_LOG_LEVEL
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. Default (info)
func NewLogger(cfg *config.Config) zerolog.Logger {
	level := determineLogLevel(cfg, os.Stderr)

	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    cfg.LogOutput,
		NoColor:   cfg.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
}

// determineLogLevel applies the precedence rules, writing warnings to warn.
func determineLogLevel(cfg *config.Config, warn io.Writer) string {
	if cfg.LogLevel != "" {
		validated := validateLogLevel(cfg.LogLevel)
		if validated != cfg.LogLevel {
			fmt.Fprintf(warn, "Warning: invalid log level %q, using %q\n", cfg.LogLevel, validated)
		}
		return validated
	}

	if cfg.Verbose && cfg.Quiet {
		fmt.Fprintf(warn, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}

	if cfg.Verbose {
		return "debug"
	}
	if cfg.Quiet {
		return "warn"
	}

	return "info"
}

// validateLogLevel returns level if it is known, otherwise "info".
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
