package service

import (
	"context"
	"fmt"
	"iter"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/repository"
)

// perTurnOverhead approximates role and separator tokens of each turn.
const perTurnOverhead = 4

// ContextAssembler turns the stored history of a session into the ordered
// turn list a turn-based provider consumes.
type ContextAssembler struct {
	store       repository.Store
	maxTurns    int
	tokenBudget int
	tokens      TokenCounter
}

// NewContextAssembler creates an assembler. maxTurns and tokenBudget of zero
// disable the respective cap.
func NewContextAssembler(store repository.Store, maxTurns, tokenBudget int, tokens TokenCounter) *ContextAssembler {
	if tokens == nil {
		tokens = EstimateCounter{}
	}
	return &ContextAssembler{
		store:       store,
		maxTurns:    maxTurns,
		tokenBudget: tokenBudget,
		tokens:      tokens,
	}
}

// Assemble loads the session history, oldest first. The returned sequence may
// be ranged over any number of times.
func (a *ContextAssembler) Assemble(ctx context.Context, sessionID string) (iter.Seq[domain.Turn], error) {
	messages, err := a.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	messages = a.trim(messages)

	return func(yield func(domain.Turn) bool) {
		for _, m := range messages {
			if !yield(domain.TurnOf(m)) {
				return
			}
		}
	}, nil
}

// trim drops the oldest messages until both caps hold, then drops leading
// model turns so the window opens with the user. The newest message always
// survives.
func (a *ContextAssembler) trim(messages []domain.Message) []domain.Message {
	if a.maxTurns > 0 && len(messages) > a.maxTurns {
		messages = messages[len(messages)-a.maxTurns:]
	}
	return userLed(a.trimToBudget(messages))
}

func userLed(messages []domain.Message) []domain.Message {
	for len(messages) > 1 && domain.RoleOf(messages[0].Sender) != domain.RoleUser {
		messages = messages[1:]
	}
	return messages
}

func (a *ContextAssembler) trimToBudget(messages []domain.Message) []domain.Message {
	if a.tokenBudget <= 0 || len(messages) == 0 {
		return messages
	}

	start := len(messages) - 1
	used := a.tokens.Count(messages[start].Text) + perTurnOverhead
	for start > 0 {
		cost := a.tokens.Count(messages[start-1].Text) + perTurnOverhead
		if used+cost > a.tokenBudget {
			break
		}
		used += cost
		start--
	}
	return messages[start:]
}
