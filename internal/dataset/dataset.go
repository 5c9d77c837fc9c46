// Package dataset defines the tabular data model shared by every pipeline
// stage: ordered rows of column→value mappings, parsed from CSV or Excel
// uploads and normalized to a common column set.
package dataset

import (
	"sort"

	apperrors "tableone/internal/errors"
)

// Value is a single cell. Parsing produces string, float64, bool or nil;
// downstream stages treat everything as opaque scalars.
type Value = any

// DataRow maps column name to cell value. The column order lives on the
// enclosing Dataset because Go maps are unordered.
type DataRow = map[string]Value

// Dataset is an ordered sequence of rows sharing a common column set. The
// first header row defines Columns; Normalize extends every row to the
// union of observed keys.
type Dataset struct {
	Columns  []string  `json:"columns"`
	Rows     []DataRow `json:"rows"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Limits bounds what a parsed dataset may contain.
type Limits struct {
	MaxRows    int
	MaxColumns int
}

// Normalize fills missing keys with "" across the union of columns so every
// row exposes the same key set. Column order is the header order with any
// extra keys appended in sorted order.
func Normalize(rows []DataRow, headerColumns []string) ([]string, []DataRow) {
	seen := make(map[string]bool, len(headerColumns))
	columns := make([]string, 0, len(headerColumns))
	for _, col := range headerColumns {
		if !seen[col] {
			seen[col] = true
			columns = append(columns, col)
		}
	}

	var extras []string
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				extras = append(extras, key)
			}
		}
	}
	sort.Strings(extras)
	columns = append(columns, extras...)

	normalized := make([]DataRow, len(rows))
	for i, row := range rows {
		complete := make(DataRow, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				complete[col] = v
			} else {
				complete[col] = ""
			}
		}
		normalized[i] = complete
	}

	return columns, normalized
}

// CheckLimits enforces the configured row/column ceilings.
func (d *Dataset) CheckLimits(limits Limits) *apperrors.AppError {
	if limits.MaxRows > 0 && len(d.Rows) > limits.MaxRows {
		return apperrors.New(apperrors.CodeValidationError, apperrors.ContextFileProcessing, "",
			apperrors.WithMessage("row count exceeds limit"),
			apperrors.WithDetails(apperrors.Details{
				"rows":  len(d.Rows),
				"limit": limits.MaxRows,
			}))
	}
	if limits.MaxColumns > 0 && len(d.Columns) > limits.MaxColumns {
		return apperrors.New(apperrors.CodeValidationError, apperrors.ContextFileProcessing, "",
			apperrors.WithMessage("column count exceeds limit"),
			apperrors.WithDetails(apperrors.Details{
				"columns": len(d.Columns),
				"limit":   limits.MaxColumns,
			}))
	}
	return nil
}

// IsEmpty reports whether the dataset holds no rows.
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.Rows) == 0
}

// Clone returns a deep copy. Stages that may mutate the working dataset
// operate on a clone so the parsed original survives imputation fallback.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		Columns:  append([]string(nil), d.Columns...),
		Warnings: append([]string(nil), d.Warnings...),
		Rows:     make([]DataRow, len(d.Rows)),
	}
	for i, row := range d.Rows {
		copied := make(DataRow, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out.Rows[i] = copied
	}
	return out
}
