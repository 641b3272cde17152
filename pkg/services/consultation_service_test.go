package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/apperrors"
	"github.com/gaitguard/gaitguard-engine/pkg/llm"
)

func TestConsultationChat(t *testing.T) {
	coachMock := llm.NewMockCoachClient()
	var gotHistory []llm.ChatMessage
	coachMock.ChatFunc = func(ctx context.Context, history []llm.ChatMessage) (string, error) {
		gotHistory = history
		return "Keep your steps even and land softly.", nil
	}

	svc := NewConsultationService(coachMock, zap.NewNop())

	history := []llm.ChatMessage{
		{Role: "user", Content: "Why do I limp?"},
		{Role: "assistant", Content: "Your gait shows a pain-avoidance pattern."},
	}
	reply, err := svc.Chat(context.Background(), history, "What can I do about it?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "Keep your steps even and land softly." {
		t.Errorf("unexpected reply: %q", reply)
	}
	if len(gotHistory) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(gotHistory))
	}
	last := gotHistory[len(gotHistory)-1]
	if last.Role != "user" || last.Content != "What can I do about it?" {
		t.Errorf("expected user message appended last, got %+v", last)
	}
}

func TestConsultationChat_CapsHistory(t *testing.T) {
	coachMock := llm.NewMockCoachClient()
	var gotLen int
	coachMock.ChatFunc = func(ctx context.Context, history []llm.ChatMessage) (string, error) {
		gotLen = len(history)
		return "ok", nil
	}

	svc := NewConsultationService(coachMock, zap.NewNop())

	history := make([]llm.ChatMessage, 50)
	for i := range history {
		history[i] = llm.ChatMessage{Role: "user", Content: "older message"}
	}
	if _, err := svc.Chat(context.Background(), history, "newest"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if gotLen != maxConsultationTurns+1 {
		t.Errorf("expected history capped at %d plus the new message, got %d", maxConsultationTurns, gotLen)
	}
}

func TestConsultationChat_EmptyMessage(t *testing.T) {
	svc := NewConsultationService(llm.NewMockCoachClient(), zap.NewNop())

	if _, err := svc.Chat(context.Background(), nil, "   "); err == nil {
		t.Fatal("expected error for blank message")
	}
}

func TestConsultationChat_NoCoach(t *testing.T) {
	svc := NewConsultationService(nil, zap.NewNop())

	_, err := svc.Chat(context.Background(), nil, "hello")
	if !errors.Is(err, apperrors.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestConsultationChat_CoachError(t *testing.T) {
	coachMock := llm.NewMockCoachClient()
	coachMock.ChatFunc = func(ctx context.Context, history []llm.ChatMessage) (string, error) {
		return "", errors.New("model overloaded")
	}

	svc := NewConsultationService(coachMock, zap.NewNop())

	if _, err := svc.Chat(context.Background(), nil, "hello"); err == nil {
		t.Fatal("expected error to propagate")
	}
}
