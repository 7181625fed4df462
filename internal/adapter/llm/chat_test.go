package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

type geminiBody struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
		TopP            float64 `json:"topP"`
		TopK            float64 `json:"topK"`
	} `json:"generationConfig"`
}

func TestChatClientGenerate(t *testing.T) {
	var got geminiBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"**Hi** there"}]}}]}`)
	}))
	defer server.Close()

	client, err := NewChatClient(context.Background(), server.URL, "secret", time.Second)
	require.NoError(t, err)

	turns := []domain.Turn{
		{Role: domain.RoleUser, Text: "hello"},
		{Role: domain.RoleModel, Text: "hi!"},
		{Role: domain.RoleUser, Text: "how are you?"},
	}
	out, err := client.Generate(context.Background(), GenerateRequest{
		Model:  DefaultModel(domain.VariantChat),
		Prompt: "how are you?",
		Turns:  slices.Values(turns),
	})
	require.NoError(t, err)
	assert.Equal(t, "**Hi** there", out)

	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "how are you?", got.Contents[2].Parts[0].Text)
	assert.Equal(t, 500, got.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.7, got.GenerationConfig.Temperature, 1e-6)
	assert.InDelta(t, 0.9, got.GenerationConfig.TopP, 1e-6)
	assert.InDelta(t, 50, got.GenerationConfig.TopK, 1e-6)
}

func TestChatClientMissingKeySkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client, err := NewChatClient(context.Background(), server.URL, "", time.Second)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{Model: DefaultModel(domain.VariantChat), Prompt: "hi"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, int32(0), hits.Load())
}

func TestChatClientTransportErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			client, err := NewChatClient(context.Background(), server.URL, "secret", time.Second)
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), GenerateRequest{Model: DefaultModel(domain.VariantChat), Prompt: "hi"})
			var terr *TransportError
			require.True(t, errors.As(err, &terr), "got %v", err)
			assert.Equal(t, "gemini", terr.Provider)
		})
	}
}

func TestBuildContentsFallsBackToPrompt(t *testing.T) {
	contents := buildContents(GenerateRequest{Prompt: "solo"})
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "solo", contents[0].Parts[0].Text)
}
