// Package observability carries run-scoped logging context (run ID, stage
// and the destination logger) through a context.Context.
package observability

import (
	"context"
	"log/slog"

	"github.com/devscast/siteconf/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	RunID  string
	Stage  string
	Logger *slog.Logger
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// WithLogger routes the context's log records to logger instead of slog.Default.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	lc := extractLogContext(ctx)
	lc.Logger = logger
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(lc LogContext) []slog.Attr {
	attrs := []slog.Attr{}
	if lc.RunID != "" {
		attrs = append(attrs, logfields.RunID(lc.RunID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, logfields.Stage(lc.Stage))
	}
	return attrs
}

func logContext(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	lc := extractLogContext(ctx)
	logger := lc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(ctx, level, msg, append(getLogAttrs(lc), attrs...)...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelInfo, msg, attrs)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelWarn, msg, attrs)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelError, msg, attrs)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	logContext(ctx, slog.LevelDebug, msg, attrs)
}

// Logger returns the context's logger with the run ID and stage attached,
// for handing to components that take a *slog.Logger.
func Logger(ctx context.Context) *slog.Logger {
	lc := extractLogContext(ctx)
	logger := lc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, a := range getLogAttrs(lc) {
		logger = logger.With(a)
	}
	return logger
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}
