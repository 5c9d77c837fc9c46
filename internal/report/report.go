// Package report delivers terminal-error reports to the backend's
// client-error endpoint. Reporting is best-effort: a failed report is
// logged and swallowed, never surfaced to the pipeline.
package report

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"tableone/internal/client"
	apperrors "tableone/internal/errors"
)

// reportPath is the backend endpoint receiving client error reports.
const reportPath = "/client-errors"

// Metadata carries operation-specific context alongside the error: action
// name, row counts, file name, variable selections.
type Metadata map[string]any

// Reporter delivers one report per terminal error.
type Reporter interface {
	Report(ctx context.Context, appErr *apperrors.AppError, metadata Metadata)
}

// BackendReporter POSTs reports through the API client.
type BackendReporter struct {
	client *client.Client
	logger *slog.Logger
}

// NewBackendReporter creates a Reporter that delivers to the backend.
func NewBackendReporter(c *client.Client, logger *slog.Logger) *BackendReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackendReporter{client: c, logger: logger}
}

// Report serializes the error and posts it. Failures are logged and
// swallowed so reporting can never break the pipeline.
func (r *BackendReporter) Report(ctx context.Context, appErr *apperrors.AppError, metadata Metadata) {
	if appErr == nil {
		return
	}

	payload := map[string]any{
		"code":           appErr.Code,
		"context":        appErr.Context,
		"message":        appErr.Message,
		"user_message":   appErr.UserMessage,
		"action":         appErr.Action,
		"severity":       appErr.Severity,
		"correlation_id": appErr.CorrelationID,
		"timestamp":      appErr.Timestamp.Format(time.RFC3339),
		"stack":          string(debug.Stack()),
	}
	if appErr.Details != nil {
		payload["details"] = appErr.Details
	}
	if appErr.Cause != nil {
		payload["cause"] = appErr.Cause.Error()
	}
	if metadata != nil {
		payload["metadata"] = metadata
	}

	if _, reportErr := r.client.PostJSON(ctx, reportPath, "", appErr.CorrelationID, payload); reportErr != nil {
		r.logger.WarnContext(ctx, "error report delivery failed",
			slog.String("code", string(appErr.Code)),
			slog.String("correlation_id", appErr.CorrelationID),
			slog.String("report_error", reportErr.Message))
	}
}

// LogReporter writes reports to the structured log only, for CLI and
// development use.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a log-only Reporter.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, appErr *apperrors.AppError, metadata Metadata) {
	if appErr == nil {
		return
	}
	r.logger.ErrorContext(ctx, "terminal error",
		slog.String("code", string(appErr.Code)),
		slog.String("context", string(appErr.Context)),
		slog.String("message", appErr.Message),
		slog.String("correlation_id", appErr.CorrelationID),
		slog.Any("metadata", metadata))
}
