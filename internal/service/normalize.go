package service

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/policy"
)

// Canned replies.
const (
	StumpedReply     = "I’m stumped—try again?"
	NoCredsReply     = "No API key set—can’t chat right now!"
	TransientReply   = "Oops, something broke—give me a sec to recover!"
	completionMarker = "Bot:"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// Normalizer cleans raw provider output into the reply shown to the user.
type Normalizer struct {
	replies *policy.ReplyEngine
}

// NewNormalizer creates a normalizer. A nil engine disables overrides.
func NewNormalizer(replies *policy.ReplyEngine) *Normalizer {
	return &Normalizer{replies: replies}
}

// Normalize cleans raw for the given variant and applies reply overrides.
func (n *Normalizer) Normalize(ctx context.Context, variant domain.ProviderVariant, raw, prompt string) string {
	var reply string
	switch variant {
	case domain.VariantChat:
		reply = NormalizeChat(raw)
	default:
		reply = NormalizeCompletion(raw, prompt)
	}

	if variant == domain.VariantCompletion && n.replies != nil {
		override, ok, err := n.replies.Override(ctx, policy.ReplyInput{
			Prompt:  prompt,
			Variant: string(variant),
			Reply:   reply,
		})
		if err != nil {
			log.Printf("ERROR: reply policy evaluation failed: %v", err)
		} else if ok {
			return override
		}
	}

	if reply == "" {
		return StumpedReply
	}
	return reply
}

// NormalizeCompletion strips the echoed prompt from completion output. It
// returns "" when nothing usable remains.
func NormalizeCompletion(raw, prompt string) string {
	text := raw
	if i := strings.Index(raw, completionMarker); i >= 0 {
		text = raw[i+len(completionMarker):]
	}
	text = strings.TrimSpace(text)
	if text == prompt {
		return ""
	}
	return text
}

// NormalizeChat removes markdown emphasis and collapses paragraphs onto
// single lines.
func NormalizeChat(raw string) string {
	text := strings.ReplaceAll(raw, "**", "")
	text = strings.ReplaceAll(text, "*", "")

	var paragraphs []string
	for _, p := range blankLine.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return strings.Join(paragraphs, "\n")
}
