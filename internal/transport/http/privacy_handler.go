package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"tableone/internal/pipeline"
	"tableone/internal/privacy"
)

// PrivacyHandler answers the confirmation dialog of a run paused at the
// privacy gate.
type PrivacyHandler struct {
	runner  *pipeline.Runner
	gate    *privacy.Gate
	analyze *AnalyzeHandler
	logger  *slog.Logger
}

// NewPrivacyHandler creates the privacy handler. Responses to a confirmed
// run reuse the analyze handler's outcome rendering.
func NewPrivacyHandler(runner *pipeline.Runner, gate *privacy.Gate, analyze *AnalyzeHandler, logger *slog.Logger) *PrivacyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrivacyHandler{
		runner:  runner,
		gate:    gate,
		analyze: analyze,
		logger:  logger.With(slog.String("handler", "privacy")),
	}
}

// Confirm handles POST /api/privacy/confirm: the user accepted the warning,
// the gate opens and the paused run continues to completion.
func (h *PrivacyHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if appErr := h.gate.Confirm(); appErr != nil {
		renderAppError(w, r, appErr)
		return
	}

	outcome := h.runner.Resume(r.Context())
	h.analyze.respondOutcome(w, r, outcome)
}

// Cancel handles POST /api/privacy/cancel: the user rejected the warning,
// the run aborts and the session is wiped.
func (h *PrivacyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	outcome := h.runner.Cancel()
	if outcome.RunID == "" {
		renderAppError(w, r, outcome.Err)
		return
	}

	// The sensitive-data error here records the user's decision, not a
	// failure; answer 200 so clients treat the cancel as successful.
	render.JSON(w, r, map[string]string{
		"status": "cancelled",
		"run_id": outcome.RunID,
	})
}
