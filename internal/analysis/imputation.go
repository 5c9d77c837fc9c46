package analysis

import (
	"context"
	"log/slog"

	"tableone/internal/dataset"
	apperrors "tableone/internal/errors"
	"tableone/internal/report"
	"tableone/pkg/contracts/domain"
)

// ImputationRequest carries everything the missing-value fill endpoint
// needs. Strategies is optional: when set it requests a user-defined
// per-column method instead of the backend's automatic choice.
type ImputationRequest struct {
	Data       []dataset.DataRow
	Columns    []domain.ColumnProfile
	Strategies map[string]domain.ImputationMethod
	CatVars    []string
	ContVars   []string
	GroupCol   string
}

// ImputationOutcome is the successful fill result: the replacement rows
// and a per-column audit log of the methods applied.
type ImputationOutcome struct {
	Rows []dataset.DataRow
	Log  []domain.ProcessingLogEntry
}

// FillMissingValues asks the backend to impute missing cells. Imputation
// is best-effort and can never fail the pipeline: every error is reported
// and a nil outcome returned, which tells the caller to keep the original
// dataset and continue. A success with no filled_data is likewise a no-op.
func (s *Service) FillMissingValues(ctx context.Context, req ImputationRequest, token, correlationID string) *ImputationOutcome {
	meta := report.Metadata{
		"action":    "missing_fill",
		"data_rows": len(req.Data),
		"group_col": req.GroupCol,
	}
	giveUp := func(appErr *apperrors.AppError) *ImputationOutcome {
		s.reporter.Report(ctx, appErr, meta)
		s.logger.WarnContext(ctx, "imputation skipped, keeping original dataset",
			slog.String("code", string(appErr.Code)),
			slog.String("message", appErr.Message))
		return nil
	}

	if len(req.Data) == 0 {
		return nil
	}
	if token == "" {
		return giveUp(apperrors.AuthTokenMissing(correlationID))
	}

	payload := map[string]any{
		"columns":   columnPayload(req.Columns),
		"data":      req.Data,
		"cont_vars": req.ContVars,
		"cat_vars":  req.CatVars,
		"group_col": req.GroupCol,
	}
	if len(req.Strategies) > 0 {
		payload["strategies"] = req.Strategies
	}

	decoded, appErr := s.client.PostJSON(ctx, s.paths.MissingFill, token, correlationID, payload)
	if appErr != nil {
		return giveUp(appErr)
	}

	if success, _ := decoded["success"].(bool); !success {
		msg := "missing-value fill failed"
		if m, ok := decoded["message"].(string); ok && m != "" {
			msg = m
		}
		return giveUp(apperrors.New(apperrors.CodeAnalysisError, apperrors.ContextAnalysis, "analysis.failed",
			apperrors.WithMessage(msg),
			apperrors.WithCorrelationID(correlationID)))
	}

	filled, ok := decoded["filled_data"].([]any)
	if !ok || len(filled) == 0 {
		s.logger.InfoContext(ctx, "imputation returned no filled data, keeping original dataset")
		return nil
	}

	outcome := &ImputationOutcome{Rows: make([]dataset.DataRow, 0, len(filled))}
	for _, item := range filled {
		if row, ok := item.(map[string]any); ok {
			outcome.Rows = append(outcome.Rows, dataset.DataRow(row))
		}
	}
	if summary, ok := decoded["summary"].([]any); ok {
		for _, item := range summary {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			column, _ := entry["column"].(string)
			method, _ := entry["fill_method"].(string)
			if column != "" && method != "" && method != "none" {
				outcome.Log = append(outcome.Log, domain.ProcessingLogEntry{Column: column, Method: method})
			}
		}
	}

	s.logger.InfoContext(ctx, "imputation complete",
		slog.Int("rows", len(outcome.Rows)),
		slog.Int("filled_columns", len(outcome.Log)))
	return outcome
}

// columnPayload serializes profiles in the wire shape the fill endpoint
// expects: missing_pct as a formatted percentage string.
func columnPayload(profiles []domain.ColumnProfile) []map[string]any {
	out := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, map[string]any{
			"column":         p.Name,
			"missing_pct":    formatPct(p.MissingPct),
			"suggested_type": p.SuggestedType,
		})
	}
	return out
}
