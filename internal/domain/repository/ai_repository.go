package repository

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey no credential configured; calls fail closed
	ErrMissingAPIKey = errors.New("ai: api key is not configured")

	// ErrNoAnswer the service replied but carried no answer text
	ErrNoAnswer = errors.New("ai: response has no answer text")
)

// APIError error payload reported by the service itself
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ai: api error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("ai: api error (status %d): %s", e.StatusCode, e.Message)
}

// AIRepository external generative-language service.
// Errors are ErrMissingAPIKey, ErrNoAnswer, *APIError, or a transport failure.
type AIRepository interface {
	// GenerateAnswer sends a fully built prompt and returns the answer text
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}
