package exporter

import (
	"log/slog"

	"github.com/xuri/excelize/v2"

	"tableone/internal/dataset"
	apperrors "tableone/internal/errors"
	"tableone/internal/transform"
)

const defaultSheet = "Table 1"

// ExcelExporter renders an ExportTable into an in-memory workbook.
type ExcelExporter struct {
	logger *slog.Logger
}

// NewExcelExporter creates an ExcelExporter.
func NewExcelExporter(logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{logger: logger}
}

// Export writes the table to a new workbook via the stream writer and
// returns the artifact bytes. sheet defaults to "Table 1" when empty. Any
// encoding failure surfaces as FILE_ERROR with the cause attached.
func (e *ExcelExporter) Export(table *transform.ExportTable, sheet, filename string) (*Artifact, *apperrors.AppError) {
	if sheet == "" {
		sheet = defaultSheet
	}
	if filename == "" {
		filename = DefaultExcelFilename
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, encodeFailed(err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, encodeFailed(err)
	}

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = excelize.Cell{Value: col, StyleID: 0}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, encodeFailed(err)
	}

	for i, row := range table.Rows {
		cells := make([]any, len(table.Columns))
		for j, col := range table.Columns {
			cells[j] = dataset.FormatDisplayValue(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, encodeFailed(err)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return nil, encodeFailed(err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, encodeFailed(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, encodeFailed(err)
	}

	e.logger.Info("excel export complete",
		slog.String("sheet", sheet),
		slog.Int("rows", len(table.Rows)),
		slog.Int("bytes", buf.Len()))
	return &Artifact{Filename: filename, MIME: MIMEExcel, Data: buf.Bytes()}, nil
}

func encodeFailed(err error) *apperrors.AppError {
	return apperrors.New(apperrors.CodeFileError, apperrors.ContextFileProcessing, "",
		apperrors.WithMessage("spreadsheet encoding failed"),
		apperrors.WithCause(err))
}
