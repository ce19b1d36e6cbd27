// Package logging provides helpers around log/slog: context propagation,
// structured operation and error logging, and safe resource cleanup.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type loggerKeyType struct{}

var loggerKey loggerKeyType

// NewLogger creates the application's root JSON logger.
// Verbose enables debug-level output.
func NewLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// WithLogger returns a copy of ctx carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default() when
// none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// LogError logs an error with a message and optional attributes.
func LogError(logger *slog.Logger, msg string, err error, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	args = append([]any{slog.Any("error", err)}, args...)
	logger.Error(msg, args...)
}

// LogOperation logs a named operation at info level with optional attributes.
func LogOperation(logger *slog.Logger, operation string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(operation, args...)
}

// LogHTTPRequest logs a completed HTTP request with method, path, status
// code, and duration in milliseconds.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	base := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	}
	logger.Info("http_request", append(base, args...)...)
}

// SafeCloseWithLogging closes c and logs any error instead of returning it.
// Intended for deferred cleanup of response bodies and similar resources.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, name string) {
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close "+name, err)
	}
}
