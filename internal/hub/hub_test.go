package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/protocol"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, conn *Connection) []byte {
	t.Helper()
	select {
	case data, ok := <-conn.Send:
		require.True(t, ok, "send channel closed")
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestPublishMessageReachesSessionSubscribers(t *testing.T) {
	h := startHub(t)

	a := h.NewConnection(nil, "s1")
	b := h.NewConnection(nil, "s2")
	require.True(t, h.Register(a))
	require.True(t, h.Register(b))
	assert.True(t, h.HasActiveConnections("s1"))
	assert.Equal(t, 2, h.GetConnectionCount())

	h.PublishMessage(domain.Message{ID: "msg_1", SessionID: "s1", Text: "hi", Sender: domain.SenderUser})

	var frame protocol.PersistedMessage
	require.NoError(t, json.Unmarshal(receive(t, a), &frame))
	assert.Equal(t, protocol.TypeMessage, frame.Type)
	assert.Equal(t, "msg_1", frame.Message.ID)
	assert.Equal(t, "s1", frame.SessionID)

	select {
	case <-b.Send:
		t.Fatal("subscriber of another session received the frame")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	conn := h.NewConnection(nil, "s1")
	require.True(t, h.Register(conn))

	h.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.False(t, h.HasActiveConnections("s1"))
	assert.ErrorIs(t, h.SendJSONToConnection(conn, map[string]string{"a": "b"}), ErrClosed)
}

func TestStoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	conn := h.NewConnection(nil, "s1")
	assert.False(t, h.Register(conn))
	h.Unregister(conn)
	h.Broadcast("s1", []byte("x"))
}

func TestRegisteredConnectionIsImmediatelyReachable(t *testing.T) {
	h := startHub(t)

	for i := range 2000 {
		conn := h.NewConnection(nil, "s1")
		require.True(t, h.Register(conn))
		require.NoError(t, h.SendJSONToConnection(conn, map[string]int{"n": i}), "iteration %d", i)
		assert.True(t, h.HasActiveConnections("s1"))
		h.Unregister(conn)
	}
	assert.Zero(t, h.GetConnectionCount())
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	h := NewHub()
	conn := h.NewConnection(nil, "s1")
	require.True(t, h.Register(conn))

	h.Unregister(conn)
	h.Unregister(conn)
	assert.False(t, h.HasActiveConnections("s1"))
}
