package llm

import (
	"context"
	"fmt"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/models"
	"github.com/gaitguard/gaitguard-engine/pkg/prompts"
)

// AnthropicCoachClient generates coaching plans and consultation replies via
// the Anthropic API.
type AnthropicCoachClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	breaker   *CircuitBreaker
	logger    *zap.Logger
}

// CoachConfig holds configuration for creating a coach client.
type CoachConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// NewCoachClient creates a new Anthropic coach client.
func NewCoachClient(cfg *CoachConfig, logger *zap.Logger) (*AnthropicCoachClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &AnthropicCoachClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		breaker:   NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		logger:    logger.Named("coach"),
	}, nil
}

// GenerateCoachingPlan formats the vision assessment into the coaching
// prompt and parses the returned plan.
func (c *AnthropicCoachClient) GenerateCoachingPlan(ctx context.Context, analysis *models.VisionAnalysis) (*models.CoachingPlan, error) {
	userPrompt := prompts.BuildCoachingUserPrompt(analysis)

	raw, err := c.complete(ctx, prompts.CoachingSystemPrompt, []ChatMessage{
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, err
	}

	plan, err := ParseJSONResponse[models.CoachingPlan](raw)
	if err != nil {
		return nil, NewError(ErrorTypeParse, "parse coaching plan", false, err)
	}
	return &plan, nil
}

// Chat continues a consultation conversation.
func (c *AnthropicCoachClient) Chat(ctx context.Context, history []ChatMessage) (string, error) {
	if len(history) == 0 {
		return "", NewError(ErrorTypeBadRequest, "empty conversation", false, nil)
	}
	return c.complete(ctx, prompts.ConsultationSystemPrompt, history)
}

// GetModel returns the configured model name.
func (c *AnthropicCoachClient) GetModel() string {
	return c.model
}

func (c *AnthropicCoachClient) complete(ctx context.Context, system string, history []ChatMessage) (string, error) {
	if ok, err := c.breaker.Allow(); !ok {
		return "", NewError(ErrorTypeServer, "coach provider circuit open", true, err)
	}

	messages := make([]anthropic.Message, 0, len(history))
	for _, m := range history {
		role := anthropic.RoleUser
		if m.Role == "assistant" {
			role = anthropic.RoleAssistant
		}
		text := m.Content
		messages = append(messages, anthropic.Message{
			Role: role,
			Content: []anthropic.MessageContent{
				{Type: "text", Text: &text},
			},
		})
	}

	c.logger.Debug("coach request",
		zap.String("model", c.model),
		zap.Int("turns", len(messages)))

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    system,
		MaxTokens: c.maxTokens,
		Messages:  messages,
	})
	if err != nil {
		c.breaker.RecordFailure()
		c.logger.Error("coach request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}
	c.breaker.RecordSuccess()

	var out string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			out += *block.Text
		}
	}
	if out == "" {
		return "", NewError(ErrorTypeParse, "no text content in response", false, nil)
	}

	c.logger.Info("coach request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return out, nil
}
