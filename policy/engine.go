// Package policy evaluates the canned reply rules written in Rego.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

// ReplyInput is the document the reply policy is evaluated against.
type ReplyInput struct {
	Prompt  string `json:"prompt"`
	Variant string `json:"variant"`
	Reply   string `json:"reply"`
}

// ReplyEngine is the OPA policy engine deciding canned reply overrides.
type ReplyEngine struct {
	query rego.PreparedEvalQuery
}

// NewReplyEngine creates a new policy engine with the given policy content.
func NewReplyEngine(ctx context.Context, policyContent string) (*ReplyEngine, error) {
	r := rego.New(
		rego.Query("data.reply_policy.override"),
		rego.Module("reply_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &ReplyEngine{query: query}, nil
}

// NewReplyEngineFromFile loads the policy from path, or the default policy
// when path is empty.
func NewReplyEngineFromFile(ctx context.Context, path string) (*ReplyEngine, error) {
	if path == "" {
		return NewReplyEngine(ctx, DefaultReplyPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply policy: %w", err)
	}
	return NewReplyEngine(ctx, string(content))
}

// Override returns the canned reply the policy selects for input. ok is
// false when no rule applies.
func (e *ReplyEngine) Override(ctx context.Context, input ReplyInput) (reply string, ok bool, err error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", false, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	// An undefined rule yields no result.
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "", false, nil
	}

	s, isString := results[0].Expressions[0].Value.(string)
	if !isString {
		return "", false, fmt.Errorf("policy returned %T, want string", results[0].Expressions[0].Value)
	}
	return s, true, nil
}

// Canned replies of the default policy.
const (
	GreetingReply = "Hey there! What’s up?"
	WeatherReply  = "Can’t check the skies, but I hope it’s clear for you!"
)

// DefaultReplyPolicy is the default policy content. Greetings win over the
// weather rule.
const DefaultReplyPolicy = `
package reply_policy

import rego.v1

greetings := {"hi", "hello", "hey"}

prompt := lower(input.prompt)

is_greeting if {
	prompt in greetings
}

override := "Hey there! What’s up?" if {
	input.variant == "completion"
	is_greeting
}

override := "Can’t check the skies, but I hope it’s clear for you!" if {
	input.variant == "completion"
	not is_greeting
	contains(prompt, "weather")
}
`
