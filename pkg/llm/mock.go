package llm

import (
	"context"

	"github.com/gaitguard/gaitguard-engine/pkg/models"
)

// MockVisionClient is a configurable mock for testing vision functionality.
// Set the function fields to control behavior in tests.
type MockVisionClient struct {
	// AnalyzeFramesFunc is called when AnalyzeFrames is invoked.
	// If nil, returns a minimal normal-gait assessment and nil error.
	AnalyzeFramesFunc func(ctx context.Context, frames []Frame, duration float64) (*models.VisionAnalysis, error)

	// Model is returned by GetModel. Defaults to "mock-vision-model".
	Model string

	// Call tracking for verification
	AnalyzeFramesCalls int
}

// NewMockVisionClient creates a new mock with sensible defaults.
func NewMockVisionClient() *MockVisionClient {
	return &MockVisionClient{Model: "mock-vision-model"}
}

// AnalyzeFrames implements VisionClient.
func (m *MockVisionClient) AnalyzeFrames(ctx context.Context, frames []Frame, duration float64) (*models.VisionAnalysis, error) {
	m.AnalyzeFramesCalls++
	if m.AnalyzeFramesFunc != nil {
		return m.AnalyzeFramesFunc(ctx, frames, duration)
	}
	return &models.VisionAnalysis{
		GaitType:      "normal",
		SeverityScore: 0,
		Confidence:    "high",
	}, nil
}

// GetModel implements VisionClient.
func (m *MockVisionClient) GetModel() string {
	if m.Model == "" {
		return "mock-vision-model"
	}
	return m.Model
}

// MockCoachClient is a configurable mock for testing coaching functionality.
type MockCoachClient struct {
	// GenerateCoachingPlanFunc is called when GenerateCoachingPlan is invoked.
	// If nil, returns an empty plan and nil error.
	GenerateCoachingPlanFunc func(ctx context.Context, analysis *models.VisionAnalysis) (*models.CoachingPlan, error)

	// ChatFunc is called when Chat is invoked.
	// If nil, returns a canned reply and nil error.
	ChatFunc func(ctx context.Context, history []ChatMessage) (string, error)

	// Model is returned by GetModel. Defaults to "mock-coach-model".
	Model string

	// Call tracking for verification
	GenerateCoachingPlanCalls int
	ChatCalls                 int
}

// NewMockCoachClient creates a new mock with sensible defaults.
func NewMockCoachClient() *MockCoachClient {
	return &MockCoachClient{Model: "mock-coach-model"}
}

// GenerateCoachingPlan implements CoachClient.
func (m *MockCoachClient) GenerateCoachingPlan(ctx context.Context, analysis *models.VisionAnalysis) (*models.CoachingPlan, error) {
	m.GenerateCoachingPlanCalls++
	if m.GenerateCoachingPlanFunc != nil {
		return m.GenerateCoachingPlanFunc(ctx, analysis)
	}
	return &models.CoachingPlan{}, nil
}

// Chat implements CoachClient.
func (m *MockCoachClient) Chat(ctx context.Context, history []ChatMessage) (string, error) {
	m.ChatCalls++
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, history)
	}
	return "mock coach reply", nil
}

// GetModel implements CoachClient.
func (m *MockCoachClient) GetModel() string {
	if m.Model == "" {
		return "mock-coach-model"
	}
	return m.Model
}
