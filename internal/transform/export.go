// Package transform turns the backend's raw result table into the
// presentation shape used for export: display names resolved, category
// levels indented, group columns relabeled with subject counts and binary
// codes substituted with their labels. All functions are pure; a panic
// anywhere in the transformation surfaces as DATA_VALIDATION_FAILED.
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "tableone/internal/errors"
	"tableone/pkg/contracts/domain"
)

// fixedColumns are never relabeled with group counts.
var fixedColumns = map[string]bool{
	"Variable": true,
	"Normal":   true,
	"P":        true,
	"Method":   true,
	"Missing":  true,
}

const (
	subItemPrefix    = "    ├─ "
	descriptorPrefix = "    • "
)

var (
	binaryCellRe   = regexp.MustCompile(`^(\d+)\s*\([\d.]+%?\)$`)
	leadingDigitRe = regexp.MustCompile(`^\d`)
	statsHintRe    = regexp.MustCompile(`mean|median|±|\d+\.\d+\s*±`)
)

// ExportRow is one rendered output row keyed by relabeled column name.
type ExportRow map[string]any

// ExportTable is the rendered result: rows plus the relabeled column
// headers in output order, since Go maps do not preserve insertion order.
type ExportTable struct {
	Columns []string
	Rows    []ExportRow
}

// PrepareExportData renders sorted result rows for export.
//
// The Variable column resolves through displayNames first, falling back to
// FormatVariableName; category levels get a branch prefix and statistics
// descriptor lines under a main variable get a bullet prefix. Every other
// selected column is either fixed (kept as-is) or a group column, which is
// relabeled "{label} (n={count})" with "?" when the count is unknown.
// Group cell values matching "0 (x%)"/"1 (x%)" are substituted through the
// binaryMappings entry keyed "{rawVariable}-{rawGroupKey}". "nan" and nil
// cells become empty strings. Inputs are never mutated.
func PrepareExportData(
	sortedRows []domain.TableRow,
	displayNames map[string]string,
	groupLabels map[string]string,
	binaryMappings map[string]domain.BinaryMapping,
	groupCounts domain.GroupCounts,
	exportColumns []string,
) (out *ExportTable, appErr *apperrors.AppError) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			appErr = apperrors.New(apperrors.CodeDataValidationFailed, apperrors.ContextDataValidation, "",
				apperrors.WithMessage("result transformation failed"),
				apperrors.WithCause(fmt.Errorf("%v", r)))
		}
	}()

	table := &ExportTable{
		Columns: make([]string, 0, len(exportColumns)),
		Rows:    make([]ExportRow, 0, len(sortedRows)),
	}
	for _, col := range exportColumns {
		table.Columns = append(table.Columns, columnLabel(col, groupLabels, groupCounts))
	}

	for idx, row := range sortedRows {
		rendered := make(ExportRow, len(exportColumns))
		for _, col := range exportColumns {
			if col == "Variable" {
				rendered[col] = renderVariable(row, sortedRows, idx, displayNames)
				continue
			}
			label := columnLabel(col, groupLabels, groupCounts)
			rendered[label] = renderCell(row, col, binaryMappings)
		}
		table.Rows = append(table.Rows, rendered)
	}
	return table, nil
}

func columnLabel(col string, groupLabels map[string]string, groupCounts domain.GroupCounts) string {
	if fixedColumns[col] {
		return col
	}
	label := col
	if l, ok := groupLabels[col]; ok && l != "" {
		label = l
	}
	count := "?"
	if n, ok := groupCounts[col]; ok {
		count = strconv.Itoa(n)
	}
	return fmt.Sprintf("%s (n=%s)", label, count)
}

func renderVariable(row domain.TableRow, allRows []domain.TableRow, idx int, displayNames map[string]string) string {
	raw := row.Variable()
	name, ok := displayNames[raw]
	if !ok || name == "" {
		name = FormatVariableName(raw)
	}

	if IsCategorySubItem(row, allRows, idx) {
		return subItemPrefix + name
	}
	if !row.IsMainVariable() && idx > 0 && allRows[idx-1].IsMainVariable() && statsHintRe.MatchString(raw) {
		return descriptorPrefix + name
	}
	return name
}

func renderCell(row domain.TableRow, col string, binaryMappings map[string]domain.BinaryMapping) any {
	value, ok := row[col]
	if !ok || value == nil {
		return ""
	}

	if !fixedColumns[col] {
		valueStr := fmt.Sprint(value)
		if m := binaryCellRe.FindStringSubmatch(valueStr); m != nil && (m[1] == "0" || m[1] == "1") {
			key := row.Variable() + "-" + col
			if mapping, ok := binaryMappings[key]; ok {
				value = leadingDigitRe.ReplaceAllStringFunc(valueStr, func(digit string) string {
					if label, ok := mapping[digit]; ok {
						return label
					}
					return digit
				})
			}
		}
	}

	if s, isStr := value.(string); isStr && s == "nan" {
		return ""
	}
	return value
}

// CoreSummaryText renders rows as a plain-text digest, one line per row
// with "col: value" segments joined by pipes. Empty and missing cells
// render as an em dash placeholder.
func CoreSummaryText(rows []domain.TableRow, exportColumns []string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		segments := make([]string, 0, len(exportColumns))
		for _, col := range exportColumns {
			display := "—"
			if value, ok := row[col]; ok && value != nil {
				if s, isStr := value.(string); !isStr || strings.TrimSpace(s) != "" {
					display = fmt.Sprint(value)
				}
			}
			segments = append(segments, col+": "+display)
		}
		lines = append(lines, strings.Join(segments, " | "))
	}
	return strings.Join(lines, "\n")
}
