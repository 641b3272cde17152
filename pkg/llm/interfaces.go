// Package llm provides the vision and coaching model clients.
package llm

import (
	"context"

	"github.com/gaitguard/gaitguard-engine/pkg/models"
)

// Frame is one extracted video frame sent to the vision model.
type Frame struct {
	// DataURL is the base64-encoded image as a data URL.
	DataURL string
	// Timestamp is the frame's offset into the video, in seconds.
	Timestamp float64
}

// VisionClient analyzes walking-video frames into a structured assessment.
// Use this interface for dependency injection to enable mocking in tests.
type VisionClient interface {
	// AnalyzeFrames sends the frame sequence plus the analysis prompt and
	// returns the parsed structured assessment.
	AnalyzeFrames(ctx context.Context, frames []Frame, duration float64) (*models.VisionAnalysis, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// CoachClient turns a vision assessment into a coaching plan and answers
// follow-up consultation messages.
type CoachClient interface {
	// GenerateCoachingPlan sends the formatted observations to the coaching
	// model and returns the parsed plan.
	GenerateCoachingPlan(ctx context.Context, analysis *models.VisionAnalysis) (*models.CoachingPlan, error)

	// Chat continues a consultation conversation and returns the assistant
	// reply. History alternates user/assistant turns, oldest first.
	Chat(ctx context.Context, history []ChatMessage) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// ChatMessage is one turn in a consultation conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Compile-time interface checks.
var (
	_ VisionClient = (*OpenAIVisionClient)(nil)
	_ CoachClient  = (*AnthropicCoachClient)(nil)
	_ VisionClient = (*MockVisionClient)(nil)
	_ CoachClient  = (*MockCoachClient)(nil)
)
