// Package repository defines the storage interface and implementations.
package repository

import (
	"context"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	// GetSession returns nil, nil when the session does not exist.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context) ([]domain.Session, error)
	// RenameSession returns domain.ErrNotFound when the session does not exist.
	RenameSession(ctx context.Context, sessionID, name string) (*domain.Session, error)
	// DeleteSession removes the session and all of its messages.
	DeleteSession(ctx context.Context, sessionID string) error

	// Message operations
	AppendMessage(ctx context.Context, message *domain.Message) error
	// ListMessages returns the messages of a session in conversation order.
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
	// DeleteMessages removes every message of a session and reports how many went.
	DeleteMessages(ctx context.Context, sessionID string) (int64, error)

	// Lifecycle
	Close() error
}
