package logging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("component", component).Logger()
	return WithContext(ctx, childLogger)
}

// WithKey creates a child logger with a cache key field
func WithKey(ctx context.Context, key any) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("key", fmt.Sprint(key)).Logger()
	return WithContext(ctx, childLogger)
}
