// Package service implements the chat session operations and the turn
// orchestrator.
package service

import (
	"time"

	"github.com/xiaot623/gogo/chatbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatbot/internal/config"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/repository"
	"github.com/xiaot623/gogo/chatbot/policy"
)

// Publisher receives every persisted message of a turn.
type Publisher interface {
	PublishMessage(msg domain.Message)
}

type Service struct {
	store      repository.Store
	providers  *llm.Providers
	assembler  *ContextAssembler
	normalizer *Normalizer
	publisher  Publisher
	config     *config.Config
	locks      *sessionLocks
	now        func() time.Time
}

// New wires a Service. publisher may be nil.
func New(store repository.Store, providers *llm.Providers, replies *policy.ReplyEngine, publisher Publisher, cfg *config.Config) *Service {
	return &Service{
		store:      store,
		providers:  providers,
		assembler:  NewContextAssembler(store, cfg.HistoryMaxTurns, cfg.HistoryTokenBudget, NewTokenCounter(DefaultEncoding)),
		normalizer: NewNormalizer(replies),
		publisher:  publisher,
		config:     cfg,
		locks:      newSessionLocks(),
		now:        time.Now,
	}
}

func (s *Service) publish(msgs ...*domain.Message) {
	if s.publisher == nil {
		return
	}
	for _, m := range msgs {
		s.publisher.PublishMessage(*m)
	}
}
