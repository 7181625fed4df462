package service

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/chatbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatbot/internal/config"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/repository"
	"github.com/xiaot623/gogo/chatbot/policy"
	"github.com/xiaot623/gogo/chatbot/tests/helpers"
)

// stubProvider returns a fixed reply or error and records what it was sent.
type stubProvider struct {
	variant domain.ProviderVariant
	reply   string
	err     error
	delay   time.Duration

	calls atomic.Int64
	mu    sync.Mutex
	last  llm.GenerateRequest
	turns []domain.Turn
}

func (p *stubProvider) Name() string                    { return "stub" }
func (p *stubProvider) Variant() domain.ProviderVariant { return p.variant }

func (p *stubProvider) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	p.last = req
	p.turns = collect(req.Turns)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (r *recordingPublisher) PublishMessage(msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func collect(seq iter.Seq[domain.Turn]) []domain.Turn {
	var out []domain.Turn
	if seq == nil {
		return out
	}
	for t := range seq {
		out = append(out, t)
	}
	return out
}

type fixture struct {
	svc        *Service
	store      *repository.SQLiteStore
	completion *stubProvider
	chat       *stubProvider
	published  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db := helpers.NewTestSQLiteStore(t)
	replies, err := policy.NewReplyEngine(ctx, policy.DefaultReplyPolicy)
	require.NoError(t, err)

	f := &fixture{
		store:      db,
		completion: &stubProvider{variant: domain.VariantCompletion, reply: "User: ping\nBot: pong"},
		chat:       &stubProvider{variant: domain.VariantChat, reply: "pong"},
		published:  &recordingPublisher{},
	}
	cfg := &config.Config{DefaultProvider: "completion", HistoryMaxTurns: 20}
	providers := &llm.Providers{Completion: f.completion, Chat: f.chat}
	f.svc = New(db, providers, replies, f.published, cfg)

	// Deterministic, strictly increasing clock.
	var tick atomic.Int64
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * time.Millisecond)
	}
	return f
}

func (f *fixture) newSession(t *testing.T) *domain.Session {
	t.Helper()
	session, err := f.svc.CreateSession(context.Background())
	require.NoError(t, err)
	return session
}
