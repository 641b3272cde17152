package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/auth"
	"github.com/gaitguard/gaitguard-engine/pkg/llm"
	"github.com/gaitguard/gaitguard-engine/pkg/models"
	"github.com/gaitguard/gaitguard-engine/pkg/services"
)

// maxAnalysisFrames caps how many frames one request may carry.
const maxAnalysisFrames = 16

// AnalyzeHTTPRequest is the input for a full movement analysis.
type AnalyzeHTTPRequest struct {
	PatientID    string  `json:"patient_id"`
	ActivityType string  `json:"activity_type"`
	Duration     float64 `json:"duration"`
	Frames       []struct {
		DataURL   string  `json:"data_url"`
		Timestamp float64 `json:"timestamp"`
	} `json:"frames"`
}

// AnalysesHandler handles analysis submission and retrieval.
type AnalysesHandler struct {
	service services.AnalysisService
	logger  *zap.Logger
}

// NewAnalysesHandler creates a new AnalysesHandler.
func NewAnalysesHandler(service services.AnalysisService, logger *zap.Logger) *AnalysesHandler {
	return &AnalysesHandler{service: service, logger: logger}
}

// RegisterRoutes registers the analyses handler's routes on the given mux.
func (h *AnalysesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/analyses", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/analyses/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("GET /api/patients/{pid}/analyses", authMiddleware.RequireAuth(h.ListForPatient))
}

// Create handles POST /api/analyses.
// Runs the full pipeline: vision assessment, plan resolution, coaching.
func (h *AnalysesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.PatientID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "patient_id is required")
		return
	}
	if len(req.Frames) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "at least one frame is required")
		return
	}
	if len(req.Frames) > maxAnalysisFrames {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "too many frames")
		return
	}

	frames := make([]llm.Frame, len(req.Frames))
	for i, f := range req.Frames {
		if f.DataURL == "" {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "frame data_url is required")
			return
		}
		frames[i] = llm.Frame{DataURL: f.DataURL, Timestamp: f.Timestamp}
	}

	record, err := h.service.Analyze(r.Context(), &services.AnalyzeRequest{
		PatientID:    req.PatientID,
		ActivityType: req.ActivityType,
		Frames:       frames,
		Duration:     req.Duration,
	})
	if err != nil {
		h.logger.Error("Analysis failed",
			zap.String("patient_id", req.PatientID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadGateway, "analysis_failed", "Analysis could not be completed")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, record); err != nil {
		h.logger.Error("Failed to encode analysis response", zap.Error(err))
	}
}

// Get handles GET /api/analyses/{id}.
func (h *AnalysesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid analysis ID")
		return
	}

	record, err := h.service.GetAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrAnalysisNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", "Analysis not found")
			return
		}
		h.logger.Error("Failed to get analysis", zap.String("id", id.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get analysis")
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode analysis response", zap.Error(err))
	}
}

// ListForPatient handles GET /api/patients/{pid}/analyses.
func (h *AnalysesHandler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("pid")
	if patientID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "patient ID is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.service.ListPatientAnalyses(r.Context(), patientID, limit)
	if err != nil {
		h.logger.Error("Failed to list analyses", zap.String("patient_id", patientID), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list analyses")
		return
	}

	if records == nil {
		records = []*models.AnalysisRecord{}
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"analyses": records}); err != nil {
		h.logger.Error("Failed to encode analyses response", zap.Error(err))
	}
}
