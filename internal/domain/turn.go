package domain

// TurnRequest is a single user message to be answered within a session.
type TurnRequest struct {
	SessionID string
	Text      string
	Model     string
	Variant   ProviderVariant
}

// TurnResult is the outcome of a handled turn.
type TurnResult struct {
	Reply            string
	UserMessage      *Message
	AssistantMessage *Message
	Variant          ProviderVariant
	Model            string
	// Fallback is set when the reply is canned text rather than model output.
	Fallback bool
}
