package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrProviderUnavailable = errors.New("model provider unavailable")
	ErrCheckinAlreadySent  = errors.New("daily check-in already sent today")
	ErrInvalidPainLevel    = errors.New("pain level must be between 0 and 10")
)
