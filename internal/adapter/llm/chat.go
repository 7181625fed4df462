package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

const chatProviderName = "gemini"

// ChatParams are the generation parameters of a turn-based request.
type ChatParams struct {
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
	TopK            float32
}

// DefaultChatParams are the fixed parameters sent with every request.
var DefaultChatParams = ChatParams{
	MaxOutputTokens: 500,
	Temperature:     0.7,
	TopP:            0.9,
	TopK:            50,
}

// ChatClient talks to a turn-based Gemini model and sends the whole
// conversation on every request.
type ChatClient struct {
	client *genai.Client
	params ChatParams
}

// NewChatClient creates a turn-based client. An empty apiKey yields a client
// whose Generate always reports ErrMissingCredentials. baseURL may be empty to
// use the public endpoint.
func NewChatClient(ctx context.Context, baseURL, apiKey string, timeout time.Duration) (*ChatClient, error) {
	c := &ChatClient{params: DefaultChatParams}
	if apiKey == "" {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Name returns the provider name.
func (c *ChatClient) Name() string { return chatProviderName }

// Variant returns domain.VariantChat.
func (c *ChatClient) Variant() domain.ProviderVariant { return domain.VariantChat }

// Generate sends the conversation and returns the first candidate's text.
func (c *ChatClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if c.client == nil {
		return "", ErrMissingCredentials
	}

	contents := buildContents(req)
	if len(contents) == 0 {
		return "", &TransportError{Provider: chatProviderName, Err: errors.New("empty conversation")}
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model.ID, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: c.params.MaxOutputTokens,
		Temperature:     genai.Ptr(c.params.Temperature),
		TopP:            genai.Ptr(c.params.TopP),
		TopK:            genai.Ptr(c.params.TopK),
	})
	if err != nil {
		return "", &TransportError{Provider: chatProviderName, Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &TransportError{Provider: chatProviderName, Err: errors.New("response has no candidates")}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// buildContents renders the turns, falling back to the bare prompt when the
// caller supplied no history.
func buildContents(req GenerateRequest) []*genai.Content {
	var contents []*genai.Content
	if req.Turns != nil {
		for turn := range req.Turns {
			contents = append(contents, &genai.Content{
				Role:  string(turn.Role),
				Parts: []*genai.Part{{Text: turn.Text}},
			})
		}
	}
	if len(contents) == 0 && req.Prompt != "" {
		contents = append(contents, &genai.Content{
			Role:  string(domain.RoleUser),
			Parts: []*genai.Part{{Text: req.Prompt}},
		})
	}
	return contents
}
