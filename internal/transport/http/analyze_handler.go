package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apperrors "tableone/internal/errors"
	"tableone/internal/pipeline"
	"tableone/internal/privacy"
	"tableone/internal/session"
	v1 "tableone/pkg/contracts/api/v1"
	"tableone/pkg/contracts/domain"
)

// AnalyzeHandler drives a full pipeline run from a multipart upload.
type AnalyzeHandler struct {
	runner      *pipeline.Runner
	session     *session.Store
	gate        *privacy.Gate
	validate    *validator.Validate
	maxFileSize int64
	logger      *slog.Logger
}

// NewAnalyzeHandler creates the analyze handler.
func NewAnalyzeHandler(runner *pipeline.Runner, store *session.Store, gate *privacy.Gate, maxFileSize int64, logger *slog.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeHandler{
		runner:      runner,
		session:     store,
		gate:        gate,
		validate:    validator.New(),
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("handler", "analyze")),
	}
}

// Analyze handles POST /api/analyze. The request is multipart: a "file"
// part holding the dataset and an optional "options" part with the JSON
// analysis options. A run that pauses at the privacy gate answers 202
// with the pending confirmation; a completed run answers 200 with the
// result table.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		renderValidationError(w, r, "request is not valid multipart form data", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		renderValidationError(w, r, "missing file upload", err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		renderValidationError(w, r, "reading uploaded file failed", err)
		return
	}

	var opts v1.AnalyzeOptions
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			renderValidationError(w, r, "options field is not valid JSON", err)
			return
		}
		if err := h.validate.Struct(opts); err != nil {
			renderValidationError(w, r, "invalid analysis options", err)
			return
		}
	}

	input := pipeline.Input{
		Filename: header.Filename,
		Content:  content,
		GroupVar: opts.GroupVar,
		AutoMode: opts.AutoMode,
		AIModel:  opts.AIModel,
		Classification: domain.VariableClassification{
			GroupVar: opts.GroupVar,
			CatVars:  opts.CatVars,
			ContVars: opts.ContVars,
		},
		FillNA:         opts.FillNA,
		Method:         domain.ImputationMethod(opts.Method),
		DisplayNames:   opts.DisplayNames,
		GroupLabels:    opts.GroupLabels,
		BinaryMappings: opts.DomainBinaryMappings(),
		ExportColumns:  opts.ExportColumns,
	}

	outcome := h.runner.Start(r.Context(), input)
	h.respondOutcome(w, r, outcome)
}

// Status handles GET /api/analyze/status with the current run's stage
// snapshots.
func (h *AnalyzeHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.runner.States())
}

func (h *AnalyzeHandler) respondOutcome(w http.ResponseWriter, r *http.Request, outcome *pipeline.Outcome) {
	if outcome.Err != nil {
		renderAppError(w, r, outcome.Err)
		return
	}

	if outcome.Paused {
		resp := v1.AnalyzeResponse{RunID: outcome.RunID, Paused: true}
		if file, columns, suggestions, _ := h.gate.Snapshot(); file != nil {
			resp.Privacy = &v1.PrivacyPrompt{
				Filename:         file.Name,
				SensitiveColumns: columns,
				Suggestions:      suggestions,
			}
		}
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, resp)
		return
	}

	table, counts := h.session.Result()
	if table == nil {
		renderAppError(w, r, apperrors.New(apperrors.CodeServerError, apperrors.ContextAnalysis, "",
			apperrors.WithMessage("run completed without a result"),
			apperrors.WithCorrelationID(outcome.RunID)))
		return
	}

	render.JSON(w, r, v1.AnalyzeResponse{
		RunID:    outcome.RunID,
		Warnings: outcome.Warnings,
		Result: &v1.AnalysisPayload{
			Table:         table,
			GroupCounts:   counts,
			ProcessingLog: h.session.ProcessingLog(),
		},
	})
}
