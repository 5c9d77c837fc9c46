package analysis

import (
	"context"
	"log/slog"

	"tableone/internal/dataset"
	apperrors "tableone/internal/errors"
	"tableone/internal/report"
	"tableone/pkg/contracts/domain"
)

// PerformAutoAnalysis asks the backend to classify the dataset's columns
// into group/categorical/continuous roles. The caller's groupVar always
// wins: whatever group variable the backend suggests is discarded and the
// stored result carries the caller's selection, even when it is empty.
func (s *Service) PerformAutoAnalysis(ctx context.Context, data []dataset.DataRow, fillNA bool, token, groupVar, correlationID string) (*domain.AutoAnalysisResult, *apperrors.AppError) {
	meta := report.Metadata{
		"action":    "auto_analysis",
		"data_rows": len(data),
		"fill_na":   fillNA,
	}

	if len(data) == 0 {
		return nil, s.report(ctx, apperrors.New(apperrors.CodeValidationError, apperrors.ContextAnalysis, "",
			apperrors.WithMessage("auto-analysis requires a non-empty dataset"),
			apperrors.WithCorrelationID(correlationID)), meta)
	}
	if token == "" {
		return nil, s.report(ctx, apperrors.AuthTokenMissing(correlationID), meta)
	}

	callCtx, cancel := s.client.AnalysisContext(ctx)
	defer cancel()

	payload := map[string]any{
		"parsedData": data,
		"fillNA":     fillNA,
	}
	decoded, appErr := s.client.PostJSON(callCtx, s.paths.AutoAnalyze, token, correlationID, payload)
	if appErr != nil {
		return nil, appErr
	}

	if success, _ := decoded["success"].(bool); !success {
		msg := "auto-analysis failed"
		if m, ok := decoded["message"].(string); ok && m != "" {
			msg = m
		}
		return nil, s.report(ctx, apperrors.New(apperrors.CodeAnalysisError, apperrors.ContextAnalysis, "analysis.failed",
			apperrors.WithMessage(msg),
			apperrors.WithCorrelationID(correlationID)), meta)
	}

	result := &domain.AutoAnalysisResult{
		GroupVar:    groupVar,
		CatVars:     stringSlice(decoded["cat_vars"]),
		ContVars:    stringSlice(decoded["cont_vars"]),
		Reasons:     stringMap(decoded["analysis"]),
		Suggestions: stringSlice(decoded["suggestions"]),
	}

	if len(result.CatVars) == 0 && len(result.ContVars) == 0 && result.GroupVar == "" {
		return nil, s.report(ctx, apperrors.New(apperrors.CodeAnalysisError, apperrors.ContextAnalysis, "analysis.no_variables",
			apperrors.WithMessage("auto-analysis found no usable variables"),
			apperrors.WithCorrelationID(correlationID)), meta)
	}

	s.logger.InfoContext(ctx, "auto-analysis complete",
		slog.String("group_var", result.GroupVar),
		slog.Int("cat_vars", len(result.CatVars)),
		slog.Int("cont_vars", len(result.ContVars)))
	return result, nil
}
