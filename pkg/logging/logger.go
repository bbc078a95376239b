// Package logging provides structured logging for converge using zerolog.
// Runs attached to a terminal get human-readable console output; runs inside
// a hosting platform's build step get JSON lines the platform can collect.
//
// A run carries its logger in the context:
//
//	ctx := logging.WithLogger(context.Background(), logging.Default())
//	ctx = logging.WithArtifact(ctx, "schema-definition")
//	logging.FromContext(ctx).Debug().Msg("Scanning tree")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewLoggerFromConfig(configFromEnv())

// configFromEnv builds the default configuration from LOG_LEVEL, LOG_FORMAT
// and LOG_OUTPUT.
func configFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	return cfg
}

// Default returns the process-wide logger used when a context carries none.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger and zerolog's global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}
