package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "tableone/internal/errors"
)

// multiSheetWarning is surfaced (not fatal) when an Excel upload carries
// more than one sheet; only the first sheet is read.
const multiSheetWarning = "Excel file contains multiple sheets; only the first sheet is read"

// Parse decodes an uploaded file into a Dataset based on its extension.
// The returned error is always an *AppError: FILE_CORRUPTED for decode
// failures, FILE_EMPTY when no data rows survive parsing.
func Parse(r io.Reader, filename string, limits Limits) (*Dataset, *apperrors.AppError) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		ds     *Dataset
		appErr *apperrors.AppError
	)
	switch ext {
	case ".csv":
		ds, appErr = ParseCSV(r, filename)
	case ".xls", ".xlsx":
		ds, appErr = ParseExcel(r, filename)
	default:
		return nil, apperrors.FileFormatUnsupported(filename, ext)
	}
	if appErr != nil {
		return nil, appErr
	}

	if len(ds.Rows) == 0 {
		return nil, apperrors.FileEmpty(filename)
	}

	if limitErr := ds.CheckLimits(limits); limitErr != nil {
		return nil, limitErr
	}

	slog.Debug("parsed dataset",
		slog.String("filename", filename),
		slog.Int("rows", len(ds.Rows)),
		slog.Int("columns", len(ds.Columns)))

	return ds, nil
}

// ParseCSV decodes comma-separated data. The first record is the header.
func ParseCSV(r io.Reader, filename string) (*Dataset, *apperrors.AppError) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.FileCorrupted(filename, err)
	}
	if len(records) == 0 {
		return nil, apperrors.FileEmpty(filename)
	}

	header := trimHeader(records[0])
	rows := make([]DataRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(DataRow, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = coerceCell(record[i])
			}
		}
		rows = append(rows, row)
	}

	columns, normalized := Normalize(rows, header)
	return &Dataset{Columns: columns, Rows: normalized}, nil
}

// ParseExcel decodes the first sheet of an XLS/XLSX workbook.
func ParseExcel(r io.Reader, filename string) (*Dataset, *apperrors.AppError) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.FileCorrupted(filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.FileEmpty(filename)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.FileCorrupted(filename, fmt.Errorf("read sheet %s: %w", sheets[0], err))
	}
	if len(records) == 0 {
		return nil, apperrors.FileEmpty(filename)
	}

	header := trimHeader(records[0])
	rows := make([]DataRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(DataRow, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = coerceCell(record[i])
			}
		}
		rows = append(rows, row)
	}

	columns, normalized := Normalize(rows, header)
	ds := &Dataset{Columns: columns, Rows: normalized}
	if len(sheets) > 1 {
		ds.Warnings = append(ds.Warnings, multiSheetWarning)
	}
	return ds, nil
}

// ReadColumns returns just the header of an upload, for the privacy gate's
// column scan before full parsing.
func ReadColumns(r io.Reader, filename string) ([]string, bool, *apperrors.AppError) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		record, err := reader.Read()
		if err == io.EOF {
			return nil, false, apperrors.FileEmpty(filename)
		}
		if err != nil {
			return nil, false, apperrors.FileCorrupted(filename, err)
		}
		return trimHeader(record), false, nil
	case ".xls", ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, false, apperrors.FileCorrupted(filename, err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, false, apperrors.FileEmpty(filename)
		}
		rows, err := f.Rows(sheets[0])
		if err != nil {
			return nil, false, apperrors.FileCorrupted(filename, err)
		}
		defer rows.Close()

		if !rows.Next() {
			return nil, len(sheets) > 1, apperrors.FileEmpty(filename)
		}
		record, err := rows.Columns()
		if err != nil {
			return nil, false, apperrors.FileCorrupted(filename, err)
		}
		return trimHeader(record), len(sheets) > 1, nil
	default:
		return nil, false, apperrors.FileFormatUnsupported(filename, ext)
	}
}

func trimHeader(record []string) []string {
	header := make([]string, 0, len(record))
	for _, col := range record {
		col = strings.TrimSpace(col)
		if col != "" {
			header = append(header, col)
		}
	}
	return header
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// coerceCell converts a raw cell string into a typed value. Numbers become
// float64 so JSON round-trips stay stable; everything else stays a string.
func coerceCell(cell string) Value {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return ""
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	return trimmed
}
