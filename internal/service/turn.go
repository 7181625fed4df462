package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/chatbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// HandleTurn answers one user message: it persists the message, asks the
// provider for a reply, persists the reply and publishes both.
func (s *Service) HandleTurn(ctx context.Context, req domain.TurnRequest) (*domain.TurnResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	variant := req.Variant
	if !variant.Valid() {
		variant, _ = domain.ParseVariant(s.config.DefaultProvider, domain.VariantCompletion)
	}
	model, ok := llm.ResolveModel(variant, req.Model)
	if !ok && req.Model != "" {
		log.Printf("WARN: unknown %s model %q, using %s", variant, req.Model, model.Name)
	}

	unlock := s.locks.Lock(req.SessionID)
	defer unlock()

	if _, err := s.GetSession(ctx, req.SessionID); err != nil {
		return nil, err
	}

	// Past validation the turn is completed even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	userMsg := &domain.Message{
		ID:        "msg_" + uuid.New().String(),
		SessionID: req.SessionID,
		Text:      req.Text,
		Sender:    domain.SenderUser,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	reply, fallback := s.generate(ctx, variant, model, req)

	assistantAt := s.now()
	if assistantAt.Before(userMsg.CreatedAt) {
		assistantAt = userMsg.CreatedAt
	}
	assistantMsg := &domain.Message{
		ID:        "msg_" + uuid.New().String(),
		SessionID: req.SessionID,
		Text:      reply,
		Sender:    domain.SenderAssistant,
		CreatedAt: assistantAt,
	}
	if err := s.store.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	s.publish(userMsg, assistantMsg)

	return &domain.TurnResult{
		Reply:            reply,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Variant:          variant,
		Model:            model.Name,
		Fallback:         fallback,
	}, nil
}

// generate calls the provider and maps failures to canned replies. The
// second result reports whether a canned reply was used.
func (s *Service) generate(ctx context.Context, variant domain.ProviderVariant, model llm.Model, req domain.TurnRequest) (string, bool) {
	provider := s.providers.For(variant)

	genReq := llm.GenerateRequest{Model: model, Prompt: req.Text}
	if variant == domain.VariantChat {
		turns, err := s.assembler.Assemble(ctx, req.SessionID)
		if err != nil {
			log.Printf("ERROR: failed to assemble context for session %s: %v", req.SessionID, err)
			return TransientReply, true
		}
		genReq.Turns = turns
	} else {
		genReq.Turns = iter.Seq[domain.Turn](func(yield func(domain.Turn) bool) {
			yield(domain.Turn{Role: domain.RoleUser, Text: req.Text})
		})
	}

	raw, err := provider.Generate(ctx, genReq)
	if err != nil {
		if errors.Is(err, llm.ErrMissingCredentials) {
			return NoCredsReply, true
		}
		log.Printf("ERROR: provider %s failed: %v", provider.Name(), err)
		return TransientReply, true
	}

	return s.normalizer.Normalize(ctx, variant, raw, req.Text), false
}
