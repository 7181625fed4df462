package llm

import (
	"strings"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// Model is a named upstream model.
type Model struct {
	// Name is the short name callers use.
	Name string `json:"name"`
	// ID is the identifier sent upstream.
	ID string `json:"id"`
}

// The first entry of each list is the variant default.
var models = map[domain.ProviderVariant][]Model{
	domain.VariantCompletion: {
		{Name: "blenderbot", ID: "facebook/blenderbot-400M-distill"},
		{Name: "blenderbot-smart", ID: "facebook/blenderbot-1B-distill"},
	},
	domain.VariantChat: {
		{Name: "gemini-flash", ID: "gemini-2.0-flash"},
		{Name: "gemini-pro", ID: "gemini-1.5-pro"},
	},
}

// Models lists the models available for a variant.
func Models(variant domain.ProviderVariant) []Model {
	out := make([]Model, len(models[variant]))
	copy(out, models[variant])
	return out
}

// DefaultModel returns the default model of a variant.
func DefaultModel(variant domain.ProviderVariant) Model {
	list := models[variant]
	if len(list) == 0 {
		return Model{}
	}
	return list[0]
}

// ResolveModel looks a model up by name. Unknown names resolve to the
// variant default and report false.
func ResolveModel(variant domain.ProviderVariant, name string) (Model, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range models[variant] {
		if m.Name == name {
			return m, true
		}
	}
	return DefaultModel(variant), false
}
