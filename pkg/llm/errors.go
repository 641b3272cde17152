package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies provider failures for retry and reporting decisions.
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeConnection ErrorType = "connection"
	ErrorTypeServer     ErrorType = "server"
	ErrorTypeBadRequest ErrorType = "bad_request"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a structured provider error with classification.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	Model      string    // Model name if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
// This allows the retry package to check retryability without importing llm.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured provider error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error and returns a structured Error.
// This consolidates error classification logic for consistent handling.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Check if already an *Error
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	// Extract HTTP status code from error string
	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504, 529} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	classified := &Error{
		Message:    errStr,
		Cause:      err,
		StatusCode: statusCode,
	}

	switch {
	case statusCode == 401 || statusCode == 403 ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "unauthorized"):
		classified.Type = ErrorTypeAuth
		classified.Retryable = false
	case statusCode == 429 || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests"):
		classified.Type = ErrorTypeRateLimit
		classified.Retryable = true
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") ||
		strings.Contains(lower, "deadline exceeded"):
		classified.Type = ErrorTypeTimeout
		classified.Retryable = true
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") || strings.Contains(lower, "broken pipe"):
		classified.Type = ErrorTypeConnection
		classified.Retryable = true
	case statusCode >= 500 || strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "service unavailable"):
		classified.Type = ErrorTypeServer
		classified.Retryable = true
	case statusCode == 400 || statusCode == 404:
		classified.Type = ErrorTypeBadRequest
		classified.Retryable = false
	default:
		classified.Type = ErrorTypeUnknown
		classified.Retryable = false
	}

	return classified
}
