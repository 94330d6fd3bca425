// Package perception is the model transport: one prompt (plus optional
// images) in, one text reply out.
package perception

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when no API key is configured. Clients
// fail at construction so no network attempt is made without one.
var ErrMissingCredential = errors.New("no API key configured; set GEMINI_API_KEY or llm.api_key")

// Client sends a single request to a model.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}

// ModelLister is implemented by clients that can enumerate models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Image is an inline image part sent with the prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is one model call.
type Request struct {
	Prompt string
	Images []Image
}

// ModelInfo describes a model available to the configured key.
type ModelInfo struct {
	Name        string
	DisplayName string
	Description string
}

// TransportError is a provider or network failure. It is never retried.
type TransportError struct {
	Provider string
	Code     int // HTTP status, 0 when the request never got a response
	Message  string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s request failed (status %d): %s", e.Provider, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
