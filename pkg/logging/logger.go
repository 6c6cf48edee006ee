// Package logging provides structured logging for the emr server using zerolog.
// Terminals get human-readable console output, everything else gets JSON.
// A request-scoped logger travels in the context:
//
//	ctx := logging.WithLogger(r.Context(), &reqLogger)
//	logging.FromContext(ctx).Debug().Msg("serving patient page")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewLoggerFromConfig(&Config{
	Level:   os.Getenv("EMR_LOG_LEVEL"),
	Format:  os.Getenv("EMR_LOG_FORMAT"),
	Output:  "stderr",
	NoColor: os.Getenv("NO_COLOR") != "",
})

// Default returns the process-wide logger used when a context carries none.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}
