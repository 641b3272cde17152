package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/models"
	"github.com/gaitguard/gaitguard-engine/pkg/prompts"
)

// OpenAIVisionClient analyzes walking-video frames via an OpenAI-compatible
// vision endpoint.
type OpenAIVisionClient struct {
	client  *openai.Client
	model   string
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// VisionConfig holds configuration for creating a vision client.
type VisionConfig struct {
	Endpoint string // Base URL, e.g., "https://api.openai.com/v1"
	Model    string // Model name, e.g., "gpt-4o"
	APIKey   string // Optional for local endpoints
}

// NewVisionClient creates a new OpenAI-compatible vision client.
func NewVisionClient(cfg *VisionConfig, logger *zap.Logger) (*OpenAIVisionClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIVisionClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		logger:  logger.Named("vision"),
	}, nil
}

// AnalyzeFrames sends the frame sequence to the vision model and parses the
// structured assessment from its response.
func (c *OpenAIVisionClient) AnalyzeFrames(ctx context.Context, frames []Frame, duration float64) (*models.VisionAnalysis, error) {
	if len(frames) == 0 {
		return nil, NewError(ErrorTypeBadRequest, "no frames provided", false, nil)
	}

	if ok, err := c.breaker.Allow(); !ok {
		return nil, NewError(ErrorTypeServer, "vision provider circuit open", true, err)
	}

	timestamps := make([]float64, len(frames))
	for i, f := range frames {
		timestamps[i] = f.Timestamp
	}

	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: prompts.BuildVisionPrompt(duration, len(frames), timestamps),
		},
	}
	for _, f := range frames {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: f.DataURL},
		})
	}

	c.logger.Debug("vision request",
		zap.String("model", c.model),
		zap.Int("frames", len(frames)),
		zap.Float64("duration_s", duration))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		c.breaker.RecordFailure()
		c.logger.Error("vision request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError(err)
	}
	c.breaker.RecordSuccess()

	if len(resp.Choices) == 0 {
		return nil, NewError(ErrorTypeParse, "no choices in response", false, nil)
	}

	analysis, err := ParseJSONResponse[models.VisionAnalysis](resp.Choices[0].Message.Content)
	if err != nil {
		return nil, NewError(ErrorTypeParse, "parse vision assessment", false, err)
	}

	c.logger.Info("vision request completed",
		zap.String("gait_type", analysis.GaitType),
		zap.Int("severity", analysis.SeverityScore),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &analysis, nil
}

// GetModel returns the configured model name.
func (c *OpenAIVisionClient) GetModel() string {
	return c.model
}
