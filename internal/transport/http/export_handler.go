package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tableone/internal/analysis"
	apperrors "tableone/internal/errors"
	"tableone/internal/exporter"
	"tableone/internal/infrastructure"
	"tableone/internal/pipeline"
	"tableone/internal/session"
	"tableone/internal/transform"
	v1 "tableone/pkg/contracts/api/v1"
	"tableone/pkg/contracts/domain"
)

// ExportHandler renders the session's result table into downloadable
// artifacts.
type ExportHandler struct {
	session  *session.Store
	service  *analysis.Service
	excel    *exporter.ExcelExporter
	word     *exporter.WordExporter
	csv      *exporter.CSVExporter
	tokens   analysis.TokenSource
	validate *validator.Validate
	logger   *slog.Logger
}

// NewExportHandler creates the export handler.
func NewExportHandler(store *session.Store, service *analysis.Service, excel *exporter.ExcelExporter, word *exporter.WordExporter, csv *exporter.CSVExporter, tokens analysis.TokenSource, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		session:  store,
		service:  service,
		excel:    excel,
		word:     word,
		csv:      csv,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "export")),
	}
}

// Excel handles POST /api/export/excel.
func (h *ExportHandler) Excel(w http.ResponseWriter, r *http.Request) {
	req, table, ok := h.prepare(w, r)
	if !ok {
		return
	}

	artifact, appErr := h.excel.Export(table, req.Sheet, req.Filename)
	if appErr != nil {
		renderAppError(w, r, appErr)
		return
	}
	writeArtifact(w, artifact)
}

// CSV handles POST /api/export/csv.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	req, table, ok := h.prepare(w, r)
	if !ok {
		return
	}

	artifact, appErr := h.csv.Export(table, req.Filename)
	if appErr != nil {
		renderAppError(w, r, appErr)
		return
	}
	writeArtifact(w, artifact)
}

// Word handles POST /api/export/word. Unlike the other formats the
// document is generated by the backend; the handler forwards the raw
// result table and streams the returned bytes.
func (h *ExportHandler) Word(w http.ResponseWriter, r *http.Request) {
	var req v1.ExportRequest
	if !h.decode(w, r, &req) {
		return
	}

	rows, counts, appErr := h.result(r)
	if appErr != nil {
		renderAppError(w, r, appErr)
		return
	}

	correlationID := infrastructure.GetCorrelationID(r.Context())
	token, err := h.tokens.Token(r.Context())
	if err != nil || token == "" {
		renderAppError(w, r, apperrors.AuthTokenMissing(correlationID))
		return
	}

	payload := exporter.WordPayload{
		ResultTable: rows,
		GroupVar:    h.session.Classification().GroupVar,
		GroupCounts: counts,
	}
	artifact, appErr := h.word.Export(r.Context(), payload, token, correlationID, req.Filename)
	if appErr != nil {
		renderAppError(w, r, appErr)
		return
	}
	writeArtifact(w, artifact)
}

// Summary handles POST /api/export/summary: the core columns of the
// result table are digested to plain text and the backend writes a
// narrative summary of them.
func (h *ExportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req v1.ExportRequest
	if !h.decode(w, r, &req) {
		return
	}

	rows, _, appErr := h.result(r)
	if appErr != nil {
		renderAppError(w, r, appErr)
		return
	}

	correlationID := infrastructure.GetCorrelationID(r.Context())
	token, err := h.tokens.Token(r.Context())
	if err != nil || token == "" {
		renderAppError(w, r, apperrors.AuthTokenMissing(correlationID))
		return
	}

	columns := req.ExportColumns
	if len(columns) == 0 {
		columns = pipeline.DefaultExportColumns(rows)
	}

	text := transform.CoreSummaryText(rows, columns)
	summary, appErr := h.service.GenerateAISummary(r.Context(), text, token, correlationID)
	if appErr != nil {
		renderAppError(w, r, appErr)
		return
	}

	render.JSON(w, r, v1.SummaryResponse{Summary: summary})
}

// prepare decodes the request and renders the session result into an
// export table, answering the error response itself on failure.
func (h *ExportHandler) prepare(w http.ResponseWriter, r *http.Request) (v1.ExportRequest, *transform.ExportTable, bool) {
	var req v1.ExportRequest
	if !h.decode(w, r, &req) {
		return req, nil, false
	}

	rows, counts, appErr := h.result(r)
	if appErr != nil {
		renderAppError(w, r, appErr)
		return req, nil, false
	}

	columns := req.ExportColumns
	if len(columns) == 0 {
		columns = pipeline.DefaultExportColumns(rows)
	}

	table, appErr := transform.PrepareExportData(rows, req.DisplayNames, req.GroupLabels,
		req.DomainBinaryMappings(), counts, columns)
	if appErr != nil {
		renderAppError(w, r, appErr)
		return req, nil, false
	}
	return req, table, true
}

func (h *ExportHandler) decode(w http.ResponseWriter, r *http.Request, req *v1.ExportRequest) bool {
	if r.Body != nil && r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, req); err != nil {
			renderValidationError(w, r, "invalid export request", err)
			return false
		}
	}
	if err := h.validate.Struct(req); err != nil {
		renderValidationError(w, r, "invalid export request", err)
		return false
	}
	return true
}

func (h *ExportHandler) result(r *http.Request) ([]domain.TableRow, domain.GroupCounts, *apperrors.AppError) {
	rows, counts := h.session.Result()
	if len(rows) == 0 {
		return nil, nil, apperrors.New(apperrors.CodeValidationError, apperrors.ContextDataValidation, "",
			apperrors.WithMessage("no analysis result to export"),
			apperrors.WithCorrelationID(infrastructure.GetCorrelationID(r.Context())))
	}
	return rows, counts, nil
}
