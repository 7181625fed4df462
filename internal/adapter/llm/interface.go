// Package llm provides the model provider abstraction and its backends.
package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// Provider generates a reply from an external text-generation backend.
type Provider interface {
	// Name identifies the backend in logs.
	Name() string
	// Variant reports which request shape the provider consumes.
	Variant() domain.ProviderVariant
	// Generate returns the raw model output. Failures are either
	// ErrMissingCredentials or a *TransportError.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest is the input of a single generation.
type GenerateRequest struct {
	Model Model
	// Prompt is the latest user message.
	Prompt string
	// Turns is the ordered conversation, newest last. Only turn-based
	// providers read it.
	Turns iter.Seq[domain.Turn]
}

// ErrMissingCredentials is returned without any network I/O when the provider
// has no API key configured.
var ErrMissingCredentials = errors.New("llm: api key not configured")

// TransportError describes a failed exchange with the upstream provider:
// network errors, non-2xx statuses and malformed payloads.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Ensure implementations satisfy Provider.
var (
	_ Provider = (*CompletionClient)(nil)
	_ Provider = (*ChatClient)(nil)
	_ Provider = (*MockClient)(nil)
)
