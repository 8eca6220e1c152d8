package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// defaultLogger answers FromContext lookups that miss. SetDefault swaps
// it for the configured logger at startup.
var defaultLogger = slog.Default()

// FromContext returns the logger carried by ctx. It never returns nil;
// contexts without a logger fall back to the default, so request paths
// can log without checking.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// WithContext returns a context carrying the logger. The dispatcher and
// the application services pick it up through FromContext, so seeding
// the root context routes their logs through the configured handler.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// SetDefault installs the logger used for FromContext misses and as
// slog.Default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
