package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	apperrors "tableone/internal/errors"
	"tableone/internal/exporter"
	"tableone/internal/infrastructure"
	v1 "tableone/pkg/contracts/api/v1"
)

// renderAppError writes the uniform error envelope with the status mapped
// from the error code. A nil error falls back to UNKNOWN_ERROR so the
// client always receives a well-formed body.
func renderAppError(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	if appErr == nil {
		appErr = apperrors.Unknown(nil, infrastructure.GetCorrelationID(r.Context()))
	}

	resp := v1.ErrorResponse{
		Code:          string(appErr.Code),
		Context:       string(appErr.Context),
		Message:       appErr.Message,
		UserMessage:   appErr.UserMessage,
		Action:        appErr.Action,
		Severity:      string(appErr.Severity),
		CanRetry:      appErr.CanRetry,
		CorrelationID: appErr.CorrelationID,
		Details:       appErr.Details,
	}
	if resp.CorrelationID == "" {
		resp.CorrelationID = infrastructure.GetCorrelationID(r.Context())
	}

	infrastructure.WithError(infrastructure.LoggerWithContext(r.Context()), appErr).Warn("request failed",
		slog.String("code", string(appErr.Code)),
		slog.String("context", string(appErr.Context)))

	render.Status(r, apperrors.HTTPStatus(appErr))
	render.JSON(w, r, resp)
}

// renderValidationError maps a request-shape failure to VALIDATION_ERROR.
func renderValidationError(w http.ResponseWriter, r *http.Request, message string, cause error) {
	opts := []apperrors.Option{
		apperrors.WithMessage(message),
		apperrors.WithCorrelationID(infrastructure.GetCorrelationID(r.Context())),
	}
	if cause != nil {
		opts = append(opts, apperrors.WithCause(cause))
	}
	renderAppError(w, r, apperrors.New(apperrors.CodeValidationError, apperrors.ContextDataValidation, "", opts...))
}

// writeArtifact streams an export artifact as a file download.
func writeArtifact(w http.ResponseWriter, artifact *exporter.Artifact) {
	w.Header().Set("Content-Type", artifact.MIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}
