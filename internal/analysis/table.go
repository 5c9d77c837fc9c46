package analysis

import (
	"context"
	"log/slog"

	"tableone/internal/dataset"
	apperrors "tableone/internal/errors"
	"tableone/internal/report"
	"tableone/pkg/contracts/domain"
)

// TableRequest is the table-analysis call payload.
type TableRequest struct {
	Data     []dataset.DataRow `json:"data"`
	GroupCol string            `json:"group_col"`
	CatVars  []string          `json:"cat_vars"`
	ContVars []string          `json:"cont_vars"`
	FillNA   bool              `json:"fillNA"`
}

// TableResult is the parsed table-analysis response.
type TableResult struct {
	Table       []domain.TableRow  `json:"table"`
	GroupCounts domain.GroupCounts `json:"group_counts,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// AnalyzeTable runs the summary-table analysis. Local preconditions are
// checked in a fixed order before any network traffic: missing token,
// unconfigured endpoint, nil dataset, then no selected variables. An empty
// (but non-nil) dataset and an empty result table are both valid. Response
// shape violations short-circuit at the first failed check and are
// reported once; AppErrors from the transport pass through unchanged.
func (s *Service) AnalyzeTable(ctx context.Context, req TableRequest, token, correlationID string) (*TableResult, *apperrors.AppError) {
	meta := report.Metadata{
		"action":    "table_analysis",
		"group_col": req.GroupCol,
		"cat_vars":  req.CatVars,
		"cont_vars": req.ContVars,
		"data_rows": len(req.Data),
	}

	if token == "" {
		return nil, s.report(ctx, apperrors.AuthTokenMissing(correlationID), meta)
	}
	if s.paths.TableAnalyze == "" {
		return nil, s.report(ctx, apperrors.New(apperrors.CodeServerError, apperrors.ContextAnalysis, "network.server_error",
			apperrors.WithMessage("table analysis endpoint is not configured"),
			apperrors.WithCorrelationID(correlationID)), meta)
	}
	if req.Data == nil {
		return nil, s.report(ctx, apperrors.New(apperrors.CodeValidationError, apperrors.ContextAnalysis, "",
			apperrors.WithMessage("table analysis requires a dataset"),
			apperrors.WithCorrelationID(correlationID)), meta)
	}
	if req.GroupCol == "" && len(req.CatVars) == 0 && len(req.ContVars) == 0 {
		return nil, s.report(ctx, apperrors.NoVariablesSelected(correlationID), meta)
	}

	callCtx, cancel := s.client.AnalysisContext(ctx)
	defer cancel()

	decoded, appErr := s.client.PostJSON(callCtx, s.paths.TableAnalyze, token, correlationID, req)
	if appErr != nil {
		return nil, appErr
	}

	if bad := s.checkTableShape(ctx, decoded, correlationID, meta); bad != nil {
		return nil, bad
	}

	data := decoded["data"].(map[string]any)
	rawTable := data["table"].([]any)

	result := &TableResult{Table: make([]domain.TableRow, 0, len(rawTable))}
	for _, item := range rawTable {
		if row, ok := item.(map[string]any); ok {
			result.Table = append(result.Table, domain.TableRow(row))
		}
	}
	if counts, ok := data["groupCounts"].(map[string]any); ok {
		result.GroupCounts = make(domain.GroupCounts, len(counts))
		for key, val := range counts {
			if n, ok := val.(float64); ok {
				result.GroupCounts[key] = int(n)
			}
		}
	}
	result.Warnings = stringSlice(data["warnings"])

	s.logger.InfoContext(ctx, "table analysis complete",
		slog.Int("table_rows", len(result.Table)),
		slog.Int("groups", len(result.GroupCounts)))
	return result, nil
}

// checkTableShape validates the response envelope in order: success flag,
// data object, table field, table is an array. The first violation wins.
func (s *Service) checkTableShape(ctx context.Context, decoded map[string]any, correlationID string, meta report.Metadata) *apperrors.AppError {
	fail := func(msg string) *apperrors.AppError {
		return s.report(ctx, apperrors.New(apperrors.CodeAnalysisError, apperrors.ContextAnalysis, "analysis.failed",
			apperrors.WithMessage(msg),
			apperrors.WithCorrelationID(correlationID)), meta)
	}

	if success, _ := decoded["success"].(bool); !success {
		if m, ok := decoded["message"].(string); ok && m != "" {
			return fail(m)
		}
		return fail("table analysis failed")
	}
	data, hasData := decoded["data"]
	if !hasData || data == nil {
		return fail("analysis service returned no result data")
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return fail("analysis result data has the wrong shape")
	}
	table, hasTable := obj["table"]
	if !hasTable || table == nil {
		return fail("analysis result is missing table data")
	}
	if _, ok := table.([]any); !ok {
		return fail("analysis result table is not an array")
	}
	return nil
}
