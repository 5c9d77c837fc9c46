package exporter

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"

	"tableone/internal/dataset"
	apperrors "tableone/internal/errors"
	"tableone/internal/transform"
)

// CSVExporter renders an ExportTable as CSV. Output is prefixed with a
// UTF-8 BOM so Excel recognizes the encoding.
type CSVExporter struct {
	logger *slog.Logger
}

// NewCSVExporter creates a CSVExporter.
func NewCSVExporter(logger *slog.Logger) *CSVExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExporter{logger: logger}
}

// Export renders the table to CSV bytes.
func (e *CSVExporter) Export(table *transform.ExportTable, filename string) (*Artifact, *apperrors.AppError) {
	if filename == "" {
		filename = DefaultCSVFilename
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(table.Columns); err != nil {
		return nil, csvFailed(err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = dataset.CellString(dataset.FormatDisplayValue(row[col]))
		}
		if err := w.Write(record); err != nil {
			return nil, csvFailed(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, csvFailed(err)
	}

	e.logger.Info("csv export complete",
		slog.Int("rows", len(table.Rows)),
		slog.Int("bytes", buf.Len()))
	return &Artifact{Filename: filename, MIME: MIMECSV, Data: buf.Bytes()}, nil
}

func csvFailed(err error) *apperrors.AppError {
	return apperrors.New(apperrors.CodeFileError, apperrors.ContextFileProcessing, "",
		apperrors.WithMessage("csv encoding failed"),
		apperrors.WithCause(err))
}

// WriteFile persists an artifact to path, creating parent directories.
func WriteFile(artifact *Artifact, path string) *apperrors.AppError {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.New(apperrors.CodeFileError, apperrors.ContextFileProcessing, "",
			apperrors.WithMessage("failed to create output directory"),
			apperrors.WithCause(err))
	}
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return apperrors.New(apperrors.CodeFileError, apperrors.ContextFileProcessing, "",
			apperrors.WithMessage("failed to write output file"),
			apperrors.WithCause(err))
	}
	return nil
}
