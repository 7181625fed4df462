// Package hub fans persisted chat messages out to WebSocket subscribers.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/protocol"
)

// Connection is a single WebSocket subscriber of one session.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	mu        sync.Mutex
}

// Hub tracks connections per session.
type Hub struct {
	connections map[string]*Connection
	// sessions maps session_id to its connection IDs
	sessions map[string]map[string]bool

	broadcast chan *SessionMessage
	// stopped is set once Run has returned; guarded by mu.
	stopped bool

	mu sync.RWMutex
}

// SessionMessage is a payload for every connection of a session.
type SessionMessage struct {
	SessionID string
	Data      []byte
}

// ErrBufferFull is returned when a connection cannot take more frames.
var ErrBufferFull = errors.New("send buffer full")

// ErrClosed is returned when sending to a connection that left the hub.
var ErrClosed = errors.New("connection closed")

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		sessions:    make(map[string]map[string]bool),
		broadcast:   make(chan *SessionMessage, 256),
	}
}

// Run delivers broadcasts until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Connection
			for connID := range h.sessions[msg.SessionID] {
				conn := h.connections[connID]
				select {
				case conn.Send <- msg.Data:
				default:
					slow = append(slow, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range slow {
				log.Printf("WARN: connection %s buffer full, closing", conn.ID)
				h.remove(conn)
			}
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return
	}
	delete(h.connections, conn.ID)
	if ids := h.sessions[conn.SessionID]; ids != nil {
		delete(ids, conn.ID)
		if len(ids) == 0 {
			delete(h.sessions, conn.SessionID)
		}
	}
	close(conn.Send)
	log.Printf("Connection unregistered: %s", conn.ID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for id, conn := range h.connections {
		close(conn.Send)
		delete(h.connections, id)
	}
	clear(h.sessions)
}

// NewConnection creates a connection bound to sessionID. It is not
// registered yet.
func (h *Hub) NewConnection(ws *websocket.Conn, sessionID string) *Connection {
	return &Connection{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Conn:      ws,
		Send:      make(chan []byte, 256),
	}
}

// Register subscribes conn to its session. The connection can receive frames
// as soon as Register returns. It reports false once the hub has stopped.
func (h *Hub) Register(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.connections[conn.ID] = conn
	if h.sessions[conn.SessionID] == nil {
		h.sessions[conn.SessionID] = make(map[string]bool)
	}
	h.sessions[conn.SessionID][conn.ID] = true
	log.Printf("Connection registered: %s (session: %s)", conn.ID, conn.SessionID)
	return true
}

// Unregister removes conn and closes its Send channel. It is safe to call
// more than once.
func (h *Hub) Unregister(conn *Connection) {
	h.remove(conn)
}

// Broadcast queues data for every connection of a session. It never blocks;
// when the queue is full the payload is dropped.
func (h *Hub) Broadcast(sessionID string, data []byte) {
	select {
	case h.broadcast <- &SessionMessage{SessionID: sessionID, Data: data}:
	default:
		log.Printf("WARN: broadcast queue full, dropping frame for session %s", sessionID)
	}
}

// BroadcastJSON encodes v and broadcasts it to a session.
func (h *Hub) BroadcastJSON(sessionID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(sessionID, data)
	return nil
}

// PublishMessage broadcasts a persisted message to its session.
func (h *Hub) PublishMessage(msg domain.Message) {
	frame := protocol.PersistedMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeMessage,
			Ts:        time.Now().UnixMilli(),
			SessionID: msg.SessionID,
		},
		Message: msg,
	}
	if err := h.BroadcastJSON(msg.SessionID, frame); err != nil {
		log.Printf("ERROR: failed to encode message %s: %v", msg.ID, err)
	}
}

// SendJSONToConnection queues v for a single connection.
func (h *Hub) SendJSONToConnection(conn *Connection, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// Send is closed under the write lock once the connection is removed.
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return ErrClosed
	}
	select {
	case conn.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// GetConnectionCount returns the number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// HasActiveConnections checks if a session has any active connections.
func (h *Hub) HasActiveConnections(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID]) > 0
}

// WriteMessage writes a frame with the connection's write lock held.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

func (c *Connection) Close() error {
	return c.Conn.Close()
}
