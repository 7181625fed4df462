package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// FirestoreStore implements Store on Cloud Firestore. Messages live in a
// "messages" subcollection of their session document.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// Ensure FirestoreStore implements Store interface.
var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore creates a Firestore store for the given project.
// FIRESTORE_EMULATOR_HOST is honoured by the client library.
func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &FirestoreStore{client: client, now: time.Now}, nil
}

type sessionDoc struct {
	Name      string    `firestore:"name"`
	CreatedAt time.Time `firestore:"created_at"`
}

type messageDoc struct {
	SessionID string    `firestore:"session_id"`
	Sender    string    `firestore:"sender"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
	// Seq is the insertion key; it orders messages that share a timestamp.
	Seq int64 `firestore:"seq"`
}

func (s *FirestoreStore) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("chat_sessions")
}

func (s *FirestoreStore) sessionRef(id string) *firestore.DocumentRef {
	return s.sessionsCol().Doc(id)
}

func (s *FirestoreStore) messagesCol(sessionID string) *firestore.CollectionRef {
	return s.sessionRef(sessionID).Collection("messages")
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// CreateSession creates a new session document.
func (s *FirestoreStore) CreateSession(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{Name: session.Name, CreatedAt: session.CreatedAt.UTC()}
	if _, err := s.sessionRef(session.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *FirestoreStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	snap, err := s.sessionRef(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}
	return &domain.Session{ID: sessionID, Name: doc.Name, CreatedAt: doc.CreatedAt}, nil
}

// ListSessions lists all sessions, most recent first.
func (s *FirestoreStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	iter := s.sessionsCol().OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	sessions := []domain.Session{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListSessions: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}
		sessions = append(sessions, domain.Session{ID: snap.Ref.ID, Name: doc.Name, CreatedAt: doc.CreatedAt})
	}
	return sessions, nil
}

// RenameSession updates the display name of a session.
func (s *FirestoreStore) RenameSession(ctx context.Context, sessionID, name string) (*domain.Session, error) {
	_, err := s.sessionRef(sessionID).Update(ctx, []firestore.Update{{Path: "name", Value: name}})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore RenameSession: %w", err)
	}
	return s.GetSession(ctx, sessionID)
}

// DeleteSession deletes a session and every message below it.
func (s *FirestoreStore) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrNotFound
	}
	if _, err := s.DeleteMessages(ctx, sessionID); err != nil {
		return err
	}
	if _, err := s.sessionRef(sessionID).Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteSession: %w", err)
	}
	return nil
}

// AppendMessage stores a new message. The owning session must exist.
func (s *FirestoreStore) AppendMessage(ctx context.Context, message *domain.Message) error {
	doc := messageDoc{
		SessionID: message.SessionID,
		Sender:    string(message.Sender),
		Text:      message.Text,
		CreatedAt: message.CreatedAt.UTC(),
		Seq:       s.now().UnixNano(),
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(s.sessionRef(message.SessionID)); err != nil {
			if status.Code(err) == codes.NotFound {
				return domain.ErrSessionNotFound
			}
			return err
		}
		return tx.Create(s.messagesCol(message.SessionID).Doc(message.ID), doc)
	})
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

// ListMessages retrieves the messages of a session in insertion order.
func (s *FirestoreStore) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	iter := s.messagesCol(sessionID).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	messages := []domain.Message{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListMessages: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}
		messages = append(messages, domain.Message{
			ID:        snap.Ref.ID,
			SessionID: sessionID,
			Text:      doc.Text,
			Sender:    domain.Sender(doc.Sender),
			CreatedAt: doc.CreatedAt,
		})
	}
	return messages, nil
}

// DeleteMessages removes all messages of a session.
func (s *FirestoreStore) DeleteMessages(ctx context.Context, sessionID string) (int64, error) {
	iter := s.messagesCol(sessionID).Documents(ctx)
	defer iter.Stop()

	var deleted int64
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, fmt.Errorf("firestore DeleteMessages: %w", err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return deleted, fmt.Errorf("firestore DeleteMessages: %w", err)
		}
		deleted++
	}
	return deleted, nil
}
