// Package domain defines the analysis domain model shared across the
// pipeline stages, the session store and the HTTP surface.
package domain

import "strings"

// TableRow is one row of the raw results table returned by the statistics
// backend. Keys are column names; the "Variable" column names the measured
// variable, with a "**" prefix marking a main (top-level) variable.
type TableRow map[string]any

// MainVariableMarker prefixes the Variable cell of a top-level row.
const MainVariableMarker = "**"

// Variable returns the row's Variable cell as a string.
func (r TableRow) Variable() string {
	if v, ok := r["Variable"].(string); ok {
		return v
	}
	return ""
}

// IsMainVariable reports whether the row is a top-level variable row.
func (r TableRow) IsMainVariable() bool {
	return strings.HasPrefix(r.Variable(), MainVariableMarker)
}

// GroupCounts maps a raw group key to the number of subjects in that group.
type GroupCounts map[string]int

// BinaryMapping translates encoded "0"/"1" cell prefixes to human-readable
// labels for one (variable, group) pair.
type BinaryMapping map[string]string

// VariableClassification assigns each column a statistical role. A column
// belongs to at most one of group/categorical/continuous/excluded;
// selecting a column as the group variable removes it from the other sets.
type VariableClassification struct {
	GroupVar     string   `json:"group_var"`
	CatVars      []string `json:"cat_vars"`
	ContVars     []string `json:"cont_vars"`
	ExcludedVars []string `json:"excluded_vars"`
}

// HasVariables reports whether anything is selected for analysis.
func (c VariableClassification) HasVariables() bool {
	return c.GroupVar != "" || len(c.CatVars) > 0 || len(c.ContVars) > 0
}

// AutoAnalysisResult is the stored outcome of the automatic variable
// classification stage. GroupVar always holds the caller's selection; the
// backend's value is informational only and never stored.
type AutoAnalysisResult struct {
	GroupVar    string            `json:"group_var"`
	CatVars     []string          `json:"cat_vars"`
	ContVars    []string          `json:"cont_vars"`
	Reasons     map[string]string `json:"reasons,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// ColumnProfile describes one column's observed characteristics, produced
// by the column-profiling call or its local fallback.
type ColumnProfile struct {
	Name          string  `json:"name"`
	SuggestedType string  `json:"suggested_type"`
	MissingPct    float64 `json:"missing_pct"`
	UniqueValues  int     `json:"unique_values"`
}

// ProcessingLogEntry records one imputation action for audit/export.
type ProcessingLogEntry struct {
	Column string `json:"column"`
	Method string `json:"method"`
}

// ImputationMethod names a per-column missing-value strategy.
type ImputationMethod string

const (
	ImputeMean   ImputationMethod = "mean"
	ImputeMedian ImputationMethod = "median"
	ImputeMode   ImputationMethod = "mode"
	ImputeKNN    ImputationMethod = "knn"
)
