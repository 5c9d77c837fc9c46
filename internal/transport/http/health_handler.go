package http

import (
	"net/http"

	"github.com/go-chi/render"

	v1 "tableone/pkg/contracts/api/v1"
)

// HealthHandler answers liveness checks.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(version string) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{version: version}
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, v1.HealthResponse{Status: "healthy", Version: h.version})
}
