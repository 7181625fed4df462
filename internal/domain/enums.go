// Package domain defines the core domain models for the chatbot.
package domain

import "strings"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Role is the speaker of a turn as seen by a turn-based provider.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// RoleOf maps a message sender to a provider role. Anything that is not the
// user is treated as the model, including the legacy "bot" sender.
func RoleOf(sender Sender) Role {
	if sender == SenderUser {
		return RoleUser
	}
	return RoleModel
}

// ProviderVariant is the family of model provider a turn is sent to.
type ProviderVariant string

const (
	// VariantCompletion sends a single flattened prompt.
	VariantCompletion ProviderVariant = "completion"
	// VariantChat sends the ordered turn list.
	VariantChat ProviderVariant = "chat"
)

// Valid reports whether v is a known variant.
func (v ProviderVariant) Valid() bool {
	return v == VariantCompletion || v == VariantChat
}

// ParseVariant resolves a caller supplied variant name. Unknown or empty
// names resolve to def; the second return value is false in that case.
func ParseVariant(name string, def ProviderVariant) (ProviderVariant, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "completion", "blenderbot", "huggingface", "hf":
		return VariantCompletion, true
	case "chat", "gemini", "turn":
		return VariantChat, true
	}
	return def, false
}
