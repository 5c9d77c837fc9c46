package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tableone/internal/session"
	v1 "tableone/pkg/contracts/api/v1"
)

// SessionHandler exposes the current session state and its
// export/import round-trip.
type SessionHandler struct {
	session  *session.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSessionHandler creates the session handler.
func NewSessionHandler(store *session.Store, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		session:  store,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "session")),
	}
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap := h.session.GetSnapshot()

	resp := v1.SessionResponse{
		RowCount:       snap.RowCount,
		Classification: snap.Classification,
		FillNA:         snap.FillNA,
		Method:         string(snap.ImputationMethod),
		AutoMode:       snap.AutoMode,
		AIModel:        snap.AIModel,
		HasResult:      snap.HasResult,
		ProcessingLog:  snap.ProcessingLog,
		Dirty:          snap.Dirty,
	}
	if snap.File != nil {
		resp.File = &v1.FileInfo{Name: snap.File.Name, Size: snap.File.Size}
	}
	if parsed := h.session.ParsedData(); parsed != nil {
		resp.Columns = parsed.Columns
	}

	render.JSON(w, r, resp)
}

// Export handles GET /api/session/export with the portable session state
// document.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, appErr := h.session.ExportState()
	if appErr != nil {
		renderAppError(w, r, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="analysis-state.json"`)
	_, _ = w.Write(data)
}

// Import handles POST /api/session/import, restoring classification and
// imputation choices from a previously exported state document.
func (h *SessionHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req v1.ImportStateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderValidationError(w, r, "invalid state document", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		renderValidationError(w, r, "invalid state document", err)
		return
	}

	raw, err := json.Marshal(req.State)
	if err != nil {
		renderValidationError(w, r, "invalid state document", err)
		return
	}
	if appErr := h.session.ImportState(raw); appErr != nil {
		renderAppError(w, r, appErr)
		return
	}

	h.Get(w, r)
}
