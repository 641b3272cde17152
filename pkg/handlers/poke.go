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

// DailyCheckinRequest triggers the outbound morning prompt for a patient.
type DailyCheckinRequest struct {
	PatientID string `json:"patient_id"`
	To        string `json:"to"`
}

// pokeWebhookPayload accepts the common field spellings Poke deployments
// use for inbound messages.
type pokeWebhookPayload struct {
	PatientID string `json:"patient_id"`
	To        string `json:"to"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	Message   string `json:"message"`
	Body      string `json:"body"`
}

func (p *pokeWebhookPayload) patient() string {
	switch {
	case p.PatientID != "":
		return p.PatientID
	case p.To != "":
		return p.To
	default:
		return p.UserID
	}
}

func (p *pokeWebhookPayload) text() string {
	switch {
	case p.Text != "":
		return p.Text
	case p.Message != "":
		return p.Message
	default:
		return p.Body
	}
}

// PokeHandler handles outbound daily check-ins and the inbound reply
// webhook.
type PokeHandler struct {
	service services.CheckinService
	logger  *zap.Logger
}

// NewPokeHandler creates a new PokeHandler.
func NewPokeHandler(service services.CheckinService, logger *zap.Logger) *PokeHandler {
	return &PokeHandler{service: service, logger: logger}
}

// RegisterRoutes registers the poke handler's routes on the given mux.
// The webhook is unauthenticated; Poke does not sign requests, so it must
// stay side-effect-safe beyond event logging.
func (h *PokeHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/poke/daily-checkin", authMiddleware.RequireAuth(h.DailyCheckin))
	mux.HandleFunc("POST /api/poke/webhook", h.Webhook)
}

// DailyCheckin handles POST /api/poke/daily-checkin.
// Sends the morning prompt, at most once per patient per day.
func (h *PokeHandler) DailyCheckin(w http.ResponseWriter, r *http.Request) {
	var req DailyCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.PatientID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "patient_id is required")
		return
	}

	err := h.service.SendDailyCheckin(r.Context(), req.PatientID, req.To)
	if err != nil {
		if errors.Is(err, apperrors.ErrCheckinAlreadySent) {
			_ = ErrorResponse(w, http.StatusConflict, "already_sent", "Daily check-in already sent today")
			return
		}
		h.logger.Error("Failed to send daily checkin",
			zap.String("patient_id", req.PatientID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadGateway, "send_failed", "Failed to send daily check-in")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"sent": true}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Webhook handles POST /api/poke/webhook.
// Parses a patient's free-text reply into a check-in or symptom note.
func (h *PokeHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload pokeWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	patientID, text := payload.patient(), payload.text()
	if patientID == "" || text == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "patient_id and text required")
		return
	}

	result, err := h.service.HandleInboundMessage(r.Context(), patientID, text)
	if err != nil {
		h.logger.Error("Failed to handle inbound message",
			zap.String("patient_id", patientID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to handle message")
		return
	}

	response := map[string]any{"success": true, "handled": result != nil}
	if result != nil {
		response["coach_message"] = result.CoachMessage
		response["flagged"] = result.Flagged
	} else {
		response["message"] = `No checkin parsed; please send "Pain X, notes: ..."`
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode webhook response", zap.Error(err))
	}
}
