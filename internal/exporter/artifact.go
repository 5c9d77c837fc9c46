package exporter

// Artifact MIME types.
const (
	MIMEExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEWord  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMECSV   = "text/csv; charset=utf-8"
)

// Default artifact filenames, used when the caller supplies none.
const (
	DefaultExcelFilename = "analysis-summary.xlsx"
	DefaultWordFilename  = "analysis-summary.docx"
	DefaultCSVFilename   = "analysis-summary.csv"
)

// Artifact is one downloadable export result.
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
}
