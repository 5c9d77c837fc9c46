package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateCorrelationID creates a new unique correlation id.
func GenerateCorrelationID() string {
	return uuid.New().String()
}

// EnsureCorrelationID ensures the context has a correlation id, generating
// one if needed.
func EnsureCorrelationID(ctx context.Context) context.Context {
	if GetCorrelationID(ctx) == "" {
		return WithCorrelationID(ctx, GenerateCorrelationID())
	}
	return ctx
}

// LoggerWithContext creates a logger that includes the correlation id from
// context. This is the preferred way to get a logger for request handling.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if id := GetCorrelationID(ctx); id != "" {
		logger = logger.With("correlation_id", id)
	}
	return logger
}

// WithComponent creates a logger with a component field.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithError creates a logger with an error field.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With("error", err.Error())
}
