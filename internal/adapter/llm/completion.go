package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

const completionProviderName = "huggingface"

// CompletionParams are the sampling parameters of a completion request.
type CompletionParams struct {
	MaxLength         int     `json:"max_length"`
	Temperature       float64 `json:"temperature"`
	TopK              int     `json:"top_k"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// DefaultCompletionParams are the fixed parameters sent with every request.
var DefaultCompletionParams = CompletionParams{
	MaxLength:         50,
	Temperature:       0.7,
	TopK:              50,
	TopP:              0.9,
	RepetitionPenalty: 1.2,
}

// CompletionRequest is the Hugging Face inference request body.
type CompletionRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters CompletionParams `json:"parameters"`
}

// CompletionResult is one element of the inference response list.
type CompletionResult struct {
	GeneratedText string `json:"generated_text"`
}

// CompletionClient talks to a completion-style model on the Hugging Face
// inference API. It only ever sees the latest user message.
type CompletionClient struct {
	baseURL    string
	apiKey     string
	params     CompletionParams
	httpClient *http.Client
}

// NewCompletionClient creates a new completion client.
func NewCompletionClient(baseURL, apiKey string, timeout time.Duration) *CompletionClient {
	return &CompletionClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		params:  DefaultCompletionParams,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name.
func (c *CompletionClient) Name() string { return completionProviderName }

// Variant returns domain.VariantCompletion.
func (c *CompletionClient) Variant() domain.ProviderVariant { return domain.VariantCompletion }

// FormatCompletionPrompt flattens a user message into the dialogue prompt the
// completion models expect.
func FormatCompletionPrompt(message string) string {
	return "User: " + message + "\nBot:"
}

// Generate sends the prompt and returns the raw generated text.
func (c *CompletionClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredentials
	}

	body, err := json.Marshal(CompletionRequest{
		Inputs:     FormatCompletionPrompt(req.Prompt),
		Parameters: c.params,
	})
	if err != nil {
		return "", c.transportError(0, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+req.Model.ID, bytes.NewReader(body))
	if err != nil {
		return "", c.transportError(0, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.transportError(0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.transportError(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return "", c.transportError(resp.StatusCode, fmt.Errorf("inference API error: %s", errResp.Error))
		}
		return "", c.transportError(resp.StatusCode, fmt.Errorf("inference API error: %s", string(respBody)))
	}

	var results []CompletionResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return "", c.transportError(resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if len(results) == 0 {
		return "", c.transportError(resp.StatusCode, fmt.Errorf("empty response list"))
	}

	return results[0].GeneratedText, nil
}

func (c *CompletionClient) transportError(status int, err error) error {
	return &TransportError{Provider: completionProviderName, StatusCode: status, Err: err}
}
