package analysis

import (
	"context"
	"log/slog"

	apperrors "tableone/internal/errors"
	"tableone/internal/report"
)

// GenerateAISummary asks the backend to write a narrative summary of the
// result table, sending the plain-text digest of the core columns. The
// summary is read from the top-level "summary" field first, then from
// "data.summary"; an empty or missing summary is an ANALYSIS_ERROR
// reported once. AppErrors from the transport pass through unchanged.
func (s *Service) GenerateAISummary(ctx context.Context, summaryText, token, correlationID string) (string, *apperrors.AppError) {
	meta := report.Metadata{
		"action":     "ai_summary",
		"text_bytes": len(summaryText),
	}

	if token == "" {
		return "", s.report(ctx, apperrors.AuthTokenMissing(correlationID), meta)
	}
	if s.paths.AISummary == "" {
		return "", s.report(ctx, apperrors.New(apperrors.CodeServerError, apperrors.ContextAnalysis, "network.server_error",
			apperrors.WithMessage("summary endpoint is not configured"),
			apperrors.WithCorrelationID(correlationID)), meta)
	}
	if summaryText == "" {
		return "", s.report(ctx, apperrors.New(apperrors.CodeValidationError, apperrors.ContextAnalysis, "",
			apperrors.WithMessage("summary generation requires result text"),
			apperrors.WithCorrelationID(correlationID)), meta)
	}

	callCtx, cancel := s.client.AnalysisContext(ctx)
	defer cancel()

	decoded, appErr := s.client.PostJSON(callCtx, s.paths.AISummary, token, correlationID,
		map[string]any{"data": summaryText})
	if appErr != nil {
		return "", appErr
	}

	summary, _ := decoded["summary"].(string)
	if summary == "" {
		if data, ok := decoded["data"].(map[string]any); ok {
			summary, _ = data["summary"].(string)
		}
	}
	if summary == "" {
		return "", s.report(ctx, apperrors.New(apperrors.CodeAnalysisError, apperrors.ContextAnalysis, "analysis.failed",
			apperrors.WithMessage("summary response carried no summary text"),
			apperrors.WithCorrelationID(correlationID)), meta)
	}

	s.logger.InfoContext(ctx, "summary generated",
		slog.Int("chars", len(summary)))
	return summary, nil
}
