package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/llm"
)

// maxConsultationTurns caps how much conversation history is sent to the
// model per request.
const maxConsultationTurns = 20

// ConsultationService runs the patient-facing movement coaching chat.
type ConsultationService interface {
	Chat(ctx context.Context, history []llm.ChatMessage, userMessage string) (string, error)
}

type consultationService struct {
	coach  llm.CoachClient // nil disables consultation
	logger *zap.Logger
}

// NewConsultationService creates a new consultation service. The coach
// client may be nil, in which case Chat returns ErrProviderUnavailable.
func NewConsultationService(coach llm.CoachClient, logger *zap.Logger) ConsultationService {
	return &consultationService{
		coach:  coach,
		logger: logger.Named("consultation"),
	}
}

// Chat appends the user's message to the capped history and asks the coach
// model for a reply.
func (s *consultationService) Chat(ctx context.Context, history []llm.ChatMessage, userMessage string) (string, error) {
	if s.coach == nil {
		return "", apperrors.ErrProviderUnavailable
	}
	if strings.TrimSpace(userMessage) == "" {
		return "", fmt.Errorf("message is required")
	}

	if len(history) > maxConsultationTurns {
		history = history[len(history)-maxConsultationTurns:]
	}

	messages := append(append([]llm.ChatMessage{}, history...), llm.ChatMessage{
		Role:    "user",
		Content: userMessage,
	})

	reply, err := s.coach.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("consultation failed: %w", err)
	}

	s.logger.Debug("consultation turn",
		zap.Int("history_len", len(messages)),
		zap.Int("reply_len", len(reply)))

	return reply, nil
}
