package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyImage           = errors.New("image data is empty")
	ErrImageTooLarge        = errors.New("image exceeds maximum allowed size")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrAnalysisFailed       = errors.New("vision analysis failed")
	ErrNotFound             = errors.New("resource not found")
)

// ProviderError is a classified failure from a vision provider call.
// Status codes in the 5xx range (and timeouts, modeled as 504) are
// retryable; 4xx responses are fatal and never retried.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s request timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, truncateBody(e.Body))
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is server-class and worth retrying.
func (e *ProviderError) Retryable() bool {
	return e.Timeout || e.StatusCode >= http.StatusInternalServerError
}

// NewTimeoutError wraps a timeout or cancellation as a retryable 504-equivalent.
func NewTimeoutError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: http.StatusGatewayTimeout,
		Timeout:    true,
		Err:        err,
	}
}

func truncateBody(s string) string {
	const maxLen = 500
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
