package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/chatbot/internal/adapter/llm"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// CreateSession starts a new, empty chat session.
func (s *Service) CreateSession(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{
		ID:        "sess_" + uuid.New().String(),
		Name:      domain.DefaultSessionName,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession returns domain.ErrSessionNotFound when the session is absent.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// ListSessions returns every session, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *Service) RenameSession(ctx context.Context, sessionID, name string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	session, err := s.store.RenameSession(ctx, sessionID, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to rename session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session together with its messages.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetHistory returns the messages of a session, oldest first.
func (s *Service) GetHistory(ctx context.Context, sessionID string) ([]domain.Message, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// ClearHistory deletes all messages of a session but keeps the session.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) (int64, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteMessages(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return n, nil
}

// Models lists the models each provider serves.
func (s *Service) Models() []llm.Catalog {
	return s.providers.Catalog()
}
