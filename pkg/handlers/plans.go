package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/auth"
	"github.com/gaitguard/gaitguard-engine/pkg/plan"
)

// ResolvePlanRequest is the input for a deterministic plan resolution.
type ResolvePlanRequest struct {
	ActivityType string   `json:"activity_type"`
	Label        string   `json:"label"`
	Severity     int      `json:"severity"`
	Observations []string `json:"observations"`
}

// PlansHandler exposes the resolution engine directly, without any model
// calls. Useful for clients that already have a classification.
type PlansHandler struct {
	logger *zap.Logger
}

// NewPlansHandler creates a new PlansHandler.
func NewPlansHandler(logger *zap.Logger) *PlansHandler {
	return &PlansHandler{logger: logger}
}

// RegisterRoutes registers the plans handler's routes on the given mux.
func (h *PlansHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/plans/resolve", authMiddleware.RequireAuth(h.Resolve))
}

// Resolve handles POST /api/plans/resolve.
// Maps a classification to body regions and exercise prescriptions.
func (h *PlansHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolvePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Label == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "label is required")
		return
	}

	result := plan.Assemble(req.ActivityType, req.Label, req.Severity, req.Observations)

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode plan response", zap.Error(err))
	}
}
