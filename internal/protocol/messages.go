// Package protocol defines the WebSocket frames exchanged with chat clients.
package protocol

import "github.com/xiaot623/gogo/chatbot/internal/domain"

// Frame types from client to server
const (
	TypeMessage = "message"
)

// Frame types from server to client
const (
	TypeResponse = "response"
	TypeError    = "error"
	// TypeMessage is also sent by the server for every persisted message.
)

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionNotFound = "session_not_found"
	ErrorCodeInternal        = "internal_error"
	ErrorCodeBusy            = "busy"
)

// BaseMessage contains common fields for all frames.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatMessage is sent by the client to start a turn.
type ChatMessage struct {
	BaseMessage
	Message  string `json:"message"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// ResponseMessage answers a ChatMessage.
type ResponseMessage struct {
	BaseMessage
	Response string `json:"response"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
	Fallback bool   `json:"fallback,omitempty"`
}

// PersistedMessage broadcasts a stored message to every subscriber of its session.
type PersistedMessage struct {
	BaseMessage
	Message domain.Message `json:"message"`
}

// ErrorMessage reports a failed frame.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}
