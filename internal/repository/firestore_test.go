package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// Runs only against the Firestore emulator.
func newTestFirestoreStore(t *testing.T) *FirestoreStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	store, err := NewFirestoreStore(context.Background(), "chatbot-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFirestoreStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestFirestoreStore(t)

	id := "sess_" + uuid.New().String()
	require.NoError(t, store.CreateSession(ctx, &domain.Session{ID: id, Name: domain.DefaultSessionName, CreatedAt: time.Now()}))

	for i, text := range []string{"hello", "hi there"} {
		sender := domain.SenderUser
		if i == 1 {
			sender = domain.SenderAssistant
		}
		require.NoError(t, store.AppendMessage(ctx, &domain.Message{
			ID: "msg_" + uuid.New().String(), SessionID: id, Text: text, Sender: sender, CreatedAt: time.Now(),
		}))
	}

	messages, err := store.ListMessages(ctx, id)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Text)
	assert.Equal(t, domain.SenderAssistant, messages[1].Sender)

	renamed, err := store.RenameSession(ctx, id, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Name)

	require.NoError(t, store.DeleteSession(ctx, id))
	got, err := store.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, store.DeleteSession(ctx, id), domain.ErrNotFound)
}

func TestFirestoreStoreAppendToMissingSession(t *testing.T) {
	store := newTestFirestoreStore(t)
	err := store.AppendMessage(context.Background(), &domain.Message{
		ID: "msg_x", SessionID: "sess_missing_" + uuid.New().String(), Text: "hi", Sender: domain.SenderUser, CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
