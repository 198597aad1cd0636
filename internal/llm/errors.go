package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// previewLimit bounds the raw text carried by MalformedResponseError
const previewLimit = 200

// InvalidRequestError represents malformed caller input. It is never retried.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Message)
}

// ProviderError represents a failed provider call
type ProviderError struct {
	Provider   Provider
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s provider error", e.Provider)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure looks transient
func (e *ProviderError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return true
}

// MalformedResponseError represents model output that could not be parsed
// into the expected structure
type MalformedResponseError struct {
	Message string
	Preview string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed response: %s", e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Preview != "" {
		msg = fmt.Sprintf("%s (response preview: %q)", msg, e.Preview)
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// NewMalformedResponse builds a MalformedResponseError with a truncated preview of raw
func NewMalformedResponse(message, raw string, cause error) *MalformedResponseError {
	return &MalformedResponseError{
		Message: message,
		Preview: Preview(raw),
		Cause:   cause,
	}
}

// Preview truncates text to a diagnostic preview
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "..."
}

// DefaultShouldRetry retries provider failures except authentication and
// request-shape errors. Caller input errors, parse errors and cancellation
// are never retried.
func DefaultShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var invalid *InvalidRequestError
	if errors.As(err, &invalid) {
		return false
	}
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return false
	}
	var provider *ProviderError
	if errors.As(err, &provider) {
		return provider.Retryable()
	}
	return true
}
