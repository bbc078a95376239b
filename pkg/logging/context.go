package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// WithField adds a single string field to the logger in the context.
func WithField(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithArtifact adds the logical artifact key to the logger.
func WithArtifact(ctx context.Context, key string) context.Context {
	return WithField(ctx, "artifact", key)
}

// WithStep adds the orchestrator step to the logger.
func WithStep(ctx context.Context, step string) context.Context {
	return WithField(ctx, "step", step)
}

// WithTarget adds the deployment target name to the logger.
func WithTarget(ctx context.Context, target string) context.Context {
	return WithField(ctx, "target", target)
}
