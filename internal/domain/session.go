package domain

import "time"

// DefaultSessionName is the display name given to new sessions.
const DefaultSessionName = "New Chat"

// Session represents a conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"timestamp"`
}

// Message represents a single utterance in a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"timestamp"`
}

// Turn is the transient provider view of a message.
type Turn struct {
	Role Role
	Text string
}

// TurnOf derives a turn from a persisted message.
func TurnOf(m Message) Turn {
	return Turn{Role: RoleOf(m.Sender), Text: m.Text}
}
