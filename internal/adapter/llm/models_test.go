package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

func TestResolveModel(t *testing.T) {
	m, ok := ResolveModel(domain.VariantCompletion, "blenderbot-smart")
	assert.True(t, ok)
	assert.Equal(t, "facebook/blenderbot-1B-distill", m.ID)

	m, ok = ResolveModel(domain.VariantCompletion, "gpt-17")
	assert.False(t, ok)
	assert.Equal(t, "facebook/blenderbot-400M-distill", m.ID)

	m, ok = ResolveModel(domain.VariantChat, "")
	assert.False(t, ok)
	assert.Equal(t, "gemini-flash", m.Name)

	m, ok = ResolveModel(domain.VariantChat, "Gemini-Pro")
	assert.True(t, ok)
	assert.Equal(t, "gemini-1.5-pro", m.ID)
}

func TestModelsReturnsCopy(t *testing.T) {
	list := Models(domain.VariantCompletion)
	list[0].ID = "changed"
	assert.Equal(t, "facebook/blenderbot-400M-distill", DefaultModel(domain.VariantCompletion).ID)
}
