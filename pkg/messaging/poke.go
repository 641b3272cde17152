// Package messaging sends patient-facing messages through the Poke API.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaitguard/gaitguard-engine/pkg/config"
	"github.com/gaitguard/gaitguard-engine/pkg/logging"
	"github.com/gaitguard/gaitguard-engine/pkg/retry"
)

// Messenger sends check-in messages to patients.
type Messenger interface {
	SendDailyCheckin(ctx context.Context, patientID, to string) (*SendResult, error)
	SendWeeklySummary(ctx context.Context, patientID, to, summaryText string) (*SendResult, error)
	SendDoctorFlag(ctx context.Context, patientID, to, reason string) (*SendResult, error)
}

// SendResult describes the outcome of a delivered (or mocked) message.
type SendResult struct {
	MessageID string    `json:"message_id"`
	Mock      bool      `json:"mock"`
	SentAt    time.Time `json:"sent_at"`
}

// Client sends messages via the Poke HTTP API. When mock mode is on (or no
// API key is configured) messages are logged instead of sent.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	mockMode   bool
	logger     *zap.Logger
}

// NewClient creates a new Poke messaging client.
func NewClient(cfg *config.PokeConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		mockMode:   !cfg.IsAvailable(),
		logger:     logger.Named("poke"),
	}
}

// SendDailyCheckin sends the morning check-in prompt to a patient.
func (c *Client) SendDailyCheckin(ctx context.Context, patientID, to string) (*SendResult, error) {
	message := "Good morning! Time for your daily rehab check-in.\n\n" +
		"Reply with:\n" +
		"• Pain level (0-10)\n" +
		"• Did you complete exercises? (yes/no)\n" +
		"• Any notes\n\n" +
		`Example: "Pain 3, did exercises, knee feels better"`

	return c.send(ctx, to, message, map[string]any{
		"type":       "daily_checkin",
		"patient_id": patientID,
	})
}

// SendWeeklySummary sends the weekly recovery summary to a patient.
func (c *Client) SendWeeklySummary(ctx context.Context, patientID, to, summaryText string) (*SendResult, error) {
	message := fmt.Sprintf("📊 Weekly Recovery Summary\n\n%s\n\nKeep up the great work! Reply if you have questions.", summaryText)

	return c.send(ctx, to, message, map[string]any{
		"type":       "weekly_summary",
		"patient_id": patientID,
	})
}

// SendDoctorFlag notifies a patient that concerning symptoms were flagged.
func (c *Client) SendDoctorFlag(ctx context.Context, patientID, to, reason string) (*SendResult, error) {
	message := fmt.Sprintf("⚠️ Important: We've flagged concerning symptoms (%s).\n\n"+
		`A provider summary has been created. Please contact your care team or use "Discuss concerns" for follow-up.`, reason)

	return c.send(ctx, to, message, map[string]any{
		"type":       "doctor_flag",
		"patient_id": patientID,
		"reason":     reason,
	})
}

// deliveryError declares retryability for the retry package, so HTTP status
// handling stays in one place.
type deliveryError struct {
	message   string
	retryable bool
}

func (e *deliveryError) Error() string     { return e.message }
func (e *deliveryError) IsRetryable() bool { return e.retryable }

type sendRequest struct {
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
}

func (c *Client) send(ctx context.Context, to, message string, metadata map[string]any) (*SendResult, error) {
	if c.mockMode {
		c.logger.Info("mock mode, message not sent",
			zap.String("to", logging.SanitizeDestination(to)),
			zap.String("message", logging.SanitizeMessage(message)),
			zap.Any("metadata", metadata))
		return &SendResult{
			MessageID: fmt.Sprintf("mock-%s", uuid.New().String()),
			Mock:      true,
			SentAt:    time.Now(),
		}, nil
	}

	body, err := json.Marshal(sendRequest{Message: message, Metadata: metadata})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	var result *SendResult
	err = retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		var postErr error
		result, postErr = c.post(ctx, body)
		return postErr
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("message sent",
		zap.String("to", logging.SanitizeDestination(to)),
		zap.String("message_id", result.MessageID))

	return result, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*SendResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/inbound-sms/webhook", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poke request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, &deliveryError{
			message:   fmt.Sprintf("poke API returned %d", resp.StatusCode),
			retryable: true,
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &deliveryError{
			message: fmt.Sprintf("poke API returned %d: %s",
				resp.StatusCode, logging.TruncateString(string(respBody), 200)),
		}
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || parsed.MessageID == "" {
		// Some deployments return an empty body on success
		parsed.MessageID = uuid.New().String()
	}

	return &SendResult{
		MessageID: parsed.MessageID,
		SentAt:    time.Now(),
	}, nil
}
