package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey keeps this package's context values collision-free.
type contextKey string

// TraceIDContextKey is the context key under which the run's trace ID
// travels. The logging handler reads it on every record.
const TraceIDContextKey contextKey = "trace_id"

// WithTraceID pins a trace ID on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the trace ID carried by the context, or "".
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok {
		return traceID
	}
	return ""
}

// GenerateTraceID creates a new unique trace ID using UUID v4
func GenerateTraceID() string {
	return uuid.New().String()
}

// ContextWithTraceID creates a new context with a generated trace ID
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureTraceID ensures the context has a trace ID, generating one if
// needed. Every record logged under the returned context carries the
// ID, which is how the log lines of one run are tied together. An
// active span's trace ID is preferred over a generated one, so log
// lines and exported spans share a single identifier.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	if spanTraceID := TraceIDFromContext(ctx); spanTraceID != "" {
		return WithTraceID(ctx, spanTraceID)
	}
	return ContextWithTraceID(ctx)
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}
