package llm

import (
	"context"
	"log"

	"github.com/xiaot623/gogo/chatbot/internal/config"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// Providers holds one provider per variant.
type Providers struct {
	Completion Provider
	Chat       Provider
}

// For returns the provider serving a variant.
func (p *Providers) For(variant domain.ProviderVariant) Provider {
	if variant == domain.VariantChat {
		return p.Chat
	}
	return p.Completion
}

// Catalog describes what one provider slot can serve.
type Catalog struct {
	Variant domain.ProviderVariant `json:"provider"`
	Backend string                 `json:"backend"`
	Default string                 `json:"default_model"`
	Models  []Model                `json:"models"`
}

// Catalog lists the models of every configured provider, keyed by the
// variant each provider reports.
func (p *Providers) Catalog() []Catalog {
	var out []Catalog
	for _, prov := range []Provider{p.Completion, p.Chat} {
		if prov == nil {
			continue
		}
		variant := prov.Variant()
		out = append(out, Catalog{
			Variant: variant,
			Backend: prov.Name(),
			Default: DefaultModel(variant).Name,
			Models:  Models(variant),
		})
	}
	return out
}

// NewProviders builds the providers described by the configuration.
// LLM_MODE=MOCK replaces both with local mocks.
func NewProviders(ctx context.Context, cfg *config.Config) (*Providers, error) {
	if cfg.MockMode() {
		log.Println("LLM_MODE=MOCK detected, using mock providers")
		return &Providers{
			Completion: NewMockClient(domain.VariantCompletion),
			Chat:       NewMockClient(domain.VariantChat),
		}, nil
	}

	if cfg.HFAPIKey == "" {
		log.Println("WARN: HF_API_KEY not set, completion provider will answer with fallback text")
	}
	if cfg.GeminiAPIKey == "" {
		log.Println("WARN: GEMINI_API_KEY not set, chat provider will answer with fallback text")
	}

	chat, err := NewChatClient(ctx, cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.ProviderTimeout)
	if err != nil {
		return nil, err
	}

	return &Providers{
		Completion: NewCompletionClient(cfg.HFBaseURL, cfg.HFAPIKey, cfg.ProviderTimeout),
		Chat:       chat,
	}, nil
}
