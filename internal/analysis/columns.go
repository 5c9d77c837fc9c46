package analysis

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"tableone/internal/dataset"
	"tableone/pkg/contracts/domain"
)

// AnalyzeColumnProfiles asks the backend for per-column missing
// percentages and suggested types. Profiling is advisory: when the call
// fails or the response is unusable, a local fallback profile built from
// the first row's keys is returned instead of an error.
func (s *Service) AnalyzeColumnProfiles(ctx context.Context, data []dataset.DataRow, token, correlationID string) []domain.ColumnProfile {
	if len(data) == 0 {
		return nil
	}

	decoded, appErr := s.client.PostJSON(ctx, s.paths.ColumnProfile, token, correlationID, map[string]any{"data": data})
	if appErr != nil {
		s.logger.WarnContext(ctx, "column profiling failed, using local fallback",
			slog.String("code", string(appErr.Code)),
			slog.String("message", appErr.Message))
		return fallbackProfiles(data)
	}

	raw, ok := decoded["columns"].([]any)
	if !ok {
		if nested, isMap := decoded["data"].(map[string]any); isMap {
			raw, ok = nested["columns"].([]any)
		}
	}
	if !ok || len(raw) == 0 {
		s.logger.WarnContext(ctx, "column profile response had no columns, using local fallback")
		return fallbackProfiles(data)
	}

	profiles := make([]domain.ColumnProfile, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["column"].(string)
		if name == "" {
			continue
		}
		profile := domain.ColumnProfile{
			Name:          name,
			SuggestedType: "unknown",
			MissingPct:    parsePct(entry["missing_pct"]),
		}
		if t, ok := entry["suggested_type"].(string); ok && t != "" {
			profile.SuggestedType = t
		}
		if n, ok := entry["unique_values"].(float64); ok {
			profile.UniqueValues = int(n)
		}
		profiles = append(profiles, profile)
	}
	if len(profiles) == 0 {
		return fallbackProfiles(data)
	}
	return profiles
}

// fallbackProfiles builds minimal profiles from the first row's keys, in
// the dataset's normalized column order.
func fallbackProfiles(data []dataset.DataRow) []domain.ColumnProfile {
	if len(data) == 0 {
		return nil
	}
	columns, _ := dataset.Normalize(data[:1], nil)
	profiles := make([]domain.ColumnProfile, 0, len(columns))
	for _, col := range columns {
		profiles = append(profiles, domain.ColumnProfile{
			Name:          col,
			SuggestedType: "unknown",
		})
	}
	return profiles
}

// parsePct reads a missing percentage that may arrive as a number or as a
// string like "12.5" or "12.5%".
func parsePct(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	}
	return 0
}

// formatPct renders a percentage the way the backend expects it.
func formatPct(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64)
}
