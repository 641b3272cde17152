package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/auth"
	"github.com/gaitguard/gaitguard-engine/pkg/llm"
	"github.com/gaitguard/gaitguard-engine/pkg/services"
)

// conversationTTL is how long an idle consultation is kept in memory.
const conversationTTL = 24 * time.Hour

// ChatRequest is one user turn in a consultation.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the coach's reply.
type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

type conversation struct {
	history  []llm.ChatMessage
	lastSeen time.Time
}

// conversationStore keeps consultation history in memory, keyed by the
// conversation ID stored in the session cookie.
type conversationStore struct {
	mu            sync.Mutex
	conversations map[string]*conversation
}

func newConversationStore() *conversationStore {
	return &conversationStore{conversations: make(map[string]*conversation)}
}

func (s *conversationStore) get(id string) []llm.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil
	}
	c.lastSeen = time.Now()
	return append([]llm.ChatMessage{}, c.history...)
}

func (s *conversationStore) append(id string, messages ...llm.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		c = &conversation{}
		s.conversations[id] = c
	}
	c.history = append(c.history, messages...)
	c.lastSeen = time.Now()

	// Evict idle conversations opportunistically
	cutoff := time.Now().Add(-conversationTTL)
	for key, conv := range s.conversations {
		if conv.lastSeen.Before(cutoff) {
			delete(s.conversations, key)
		}
	}
}

// ConsultationHandler runs the patient-facing coaching chat. The session
// cookie carries the conversation ID so clients don't manage history.
type ConsultationHandler struct {
	service services.ConsultationService
	store   *conversationStore
	logger  *zap.Logger
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(service services.ConsultationService, logger *zap.Logger) *ConsultationHandler {
	return &ConsultationHandler{
		service: service,
		store:   newConversationStore(),
		logger:  logger,
	}
}

// RegisterRoutes registers the consultation handler's routes on the given mux.
func (h *ConsultationHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/consultation/chat", authMiddleware.RequireAuth(h.Chat))
}

// Chat handles POST /api/consultation/chat.
func (h *ConsultationHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Message == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	session, err := auth.GetSession(r)
	if err != nil {
		// A tampered cookie yields a fresh session rather than an error
		h.logger.Debug("Session decode failed, starting fresh", zap.Error(err))
	}

	conversationID, _ := session.Values[auth.SessionKeyConversationID].(string)
	if conversationID == "" {
		conversationID = uuid.New().String()
		session.Values[auth.SessionKeyConversationID] = conversationID
	}

	history := h.store.get(conversationID)

	reply, err := h.service.Chat(r.Context(), history, req.Message)
	if err != nil {
		if errors.Is(err, apperrors.ErrProviderUnavailable) {
			_ = ErrorResponse(w, http.StatusServiceUnavailable, "unavailable", "Consultation is not configured")
			return
		}
		h.logger.Error("Consultation turn failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusBadGateway, "chat_failed", "Failed to generate a reply")
		return
	}

	h.store.append(conversationID,
		llm.ChatMessage{Role: "user", Content: req.Message},
		llm.ChatMessage{Role: "assistant", Content: reply},
	)

	if err := auth.SaveSession(r, w, session); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
	}

	if err := WriteJSON(w, http.StatusOK, ChatResponse{
		ConversationID: conversationID,
		Reply:          reply,
	}); err != nil {
		h.logger.Error("Failed to encode chat response", zap.Error(err))
	}
}
