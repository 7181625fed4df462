package v1

import (
	"context"
	"testing"
	"time"

	"github.com/xiaot623/gogo/chatbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatbot/internal/config"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/hub"
	"github.com/xiaot623/gogo/chatbot/internal/repository"
	"github.com/xiaot623/gogo/chatbot/internal/service"
	"github.com/xiaot623/gogo/chatbot/policy"
	"github.com/xiaot623/gogo/chatbot/tests/helpers"
)

func testConfig() *config.Config {
	return &config.Config{
		DefaultProvider:  "completion",
		HistoryMaxTurns:  20,
		WSPingInterval:   time.Second,
		WSWriteTimeout:   time.Second,
		WSReadTimeout:    5 * time.Second,
		WSMaxMessageSize: 65536,
	}
}

func newTestHandler(t *testing.T) (*Handler, repository.Store) {
	t.Helper()
	providers := &llm.Providers{
		Completion: llm.NewMockClient(domain.VariantCompletion),
		Chat:       llm.NewMockClient(domain.VariantChat),
	}
	return newTestHandlerWith(t, testConfig(), providers)
}

func newTestHandlerWith(t *testing.T, cfg *config.Config, providers *llm.Providers) (*Handler, repository.Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db := helpers.NewTestSQLiteStore(t)
	replies, err := policy.NewReplyEngine(ctx, policy.DefaultReplyPolicy)
	if err != nil {
		t.Fatalf("NewReplyEngine failed: %v", err)
	}

	h := hub.NewHub()
	go h.Run(ctx)

	svc := service.New(db, providers, replies, h, cfg)
	return NewHandler(svc, h, cfg), db
}

func seedSession(t *testing.T, db repository.Store, id string, createdAt time.Time) {
	t.Helper()
	session := &domain.Session{ID: id, Name: domain.DefaultSessionName, CreatedAt: createdAt}
	if err := db.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
}
