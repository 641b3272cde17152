package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/auth"
	"github.com/gaitguard/gaitguard-engine/pkg/services"
)

// LogCheckinRequest is the input for recording a check-in.
type LogCheckinRequest struct {
	PatientID   string `json:"patient_id"`
	To          string `json:"to,omitempty"`
	Pain        *int   `json:"pain"`
	DidExercise bool   `json:"did_exercise"`
	Notes       string `json:"notes"`
}

// SendSummaryRequest is the input for sending a weekly summary message.
type SendSummaryRequest struct {
	PatientID string `json:"patient_id"`
	To        string `json:"to,omitempty"`
}

// FlagRequest is the input for raising a doctor flag.
type FlagRequest struct {
	PatientID string `json:"patient_id"`
	To        string `json:"to,omitempty"`
	Reason    string `json:"reason"`
}

// CheckinsHandler handles check-in logging, weekly summaries, and flags.
type CheckinsHandler struct {
	service services.CheckinService
	logger  *zap.Logger
}

// NewCheckinsHandler creates a new CheckinsHandler.
func NewCheckinsHandler(service services.CheckinService, logger *zap.Logger) *CheckinsHandler {
	return &CheckinsHandler{service: service, logger: logger}
}

// RegisterRoutes registers the checkins handler's routes on the given mux.
func (h *CheckinsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/checkins", authMiddleware.RequireAuth(h.LogCheckin))
	mux.HandleFunc("GET /api/patients/{pid}/weekly-summary", authMiddleware.RequireAuth(h.WeeklySummary))
	mux.HandleFunc("POST /api/checkins/weekly-summary", authMiddleware.RequireAuth(h.SendWeeklySummary))
	mux.HandleFunc("POST /api/checkins/flag", authMiddleware.RequireAuth(h.Flag))
}

// LogCheckin handles POST /api/checkins.
func (h *CheckinsHandler) LogCheckin(w http.ResponseWriter, r *http.Request) {
	var req LogCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.PatientID == "" || req.Pain == nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "patient_id and numeric pain required")
		return
	}

	result, err := h.service.LogCheckin(r.Context(), &services.CheckinRequest{
		PatientID:   req.PatientID,
		To:          req.To,
		PainLevel:   *req.Pain,
		DidExercise: req.DidExercise,
		Notes:       req.Notes,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidPainLevel) {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "pain must be between 0 and 10")
			return
		}
		h.logger.Error("Failed to log checkin",
			zap.String("patient_id", req.PatientID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to log checkin")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, result); err != nil {
		h.logger.Error("Failed to encode checkin response", zap.Error(err))
	}
}

// WeeklySummary handles GET /api/patients/{pid}/weekly-summary.
func (h *CheckinsHandler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("pid")
	if patientID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "patient ID is required")
		return
	}

	summary, err := h.service.GetWeeklySummary(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Failed to build weekly summary",
			zap.String("patient_id", patientID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to build weekly summary")
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to encode summary response", zap.Error(err))
	}
}

// SendWeeklySummary handles POST /api/checkins/weekly-summary.
// Builds the summary and delivers it to the patient as a message.
func (h *CheckinsHandler) SendWeeklySummary(w http.ResponseWriter, r *http.Request) {
	var req SendSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.PatientID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "patient_id is required")
		return
	}

	summary, err := h.service.SendWeeklySummary(r.Context(), req.PatientID, req.To)
	if err != nil {
		h.logger.Error("Failed to send weekly summary",
			zap.String("patient_id", req.PatientID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadGateway, "send_failed", "Failed to send weekly summary")
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to encode summary response", zap.Error(err))
	}
}

// Flag handles POST /api/checkins/flag.
func (h *CheckinsHandler) Flag(w http.ResponseWriter, r *http.Request) {
	var req FlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.PatientID == "" || req.Reason == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "patient_id and reason required")
		return
	}

	if err := h.service.FlagForDoctor(r.Context(), req.PatientID, req.To, req.Reason); err != nil {
		h.logger.Error("Failed to flag for doctor",
			zap.String("patient_id", req.PatientID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to flag for doctor")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, map[string]any{"flagged": true}); err != nil {
		h.logger.Error("Failed to encode flag response", zap.Error(err))
	}
}
