package llm

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// MockClient is a local stand-in for a provider. Its output mimics the raw
// shape of the real backend so the normal cleanup path still runs.
type MockClient struct {
	variant domain.ProviderVariant
	calls   atomic.Int64
}

// NewMockClient creates a mock provider for the given variant.
func NewMockClient(variant domain.ProviderVariant) *MockClient {
	return &MockClient{variant: variant}
}

// Name returns the provider name.
func (m *MockClient) Name() string { return "mock-" + string(m.variant) }

// Variant returns the variant the mock stands in for.
func (m *MockClient) Variant() domain.ProviderVariant { return m.variant }

// Calls reports how many times Generate has been invoked.
func (m *MockClient) Calls() int64 { return m.calls.Load() }

// Generate returns a canned response derived from the input.
func (m *MockClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", &TransportError{Provider: m.Name(), Err: err}
	}

	if m.variant == domain.VariantCompletion {
		return FormatCompletionPrompt(req.Prompt) + fmt.Sprintf(" [MOCK] Received your message: %q.", truncate(req.Prompt, 100)), nil
	}

	var turns int
	var last string
	if req.Turns != nil {
		for turn := range req.Turns {
			turns++
			if turn.Role == domain.RoleUser {
				last = turn.Text
			}
		}
	}
	if last == "" {
		last = req.Prompt
	}
	return fmt.Sprintf("**[MOCK]** Received your message: %q.\n\n*%d turns in context.*", truncate(last, 100), turns), nil
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
