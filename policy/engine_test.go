package policy

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultEngine(t *testing.T) *ReplyEngine {
	t.Helper()
	e, err := NewReplyEngine(context.Background(), DefaultReplyPolicy)
	require.NoError(t, err)
	return e
}

func TestDefaultPolicyOverrides(t *testing.T) {
	e := newDefaultEngine(t)
	ctx := context.Background()

	cases := []struct {
		prompt  string
		variant string
		want    string
		ok      bool
	}{
		{"hello", "completion", GreetingReply, true},
		{"HEY", "completion", GreetingReply, true},
		{"hello there", "completion", "", false},
		{"What's the Weather like?", "completion", WeatherReply, true},
		{"hello", "chat", "", false},
		{"weather?", "chat", "", false},
		{"tell me a joke", "completion", "", false},
	}
	for _, tc := range cases {
		got, ok, err := e.Override(ctx, ReplyInput{Prompt: tc.prompt, Variant: tc.variant})
		require.NoError(t, err)
		assert.Equal(t, tc.ok, ok, tc.prompt)
		assert.Equal(t, tc.want, got, tc.prompt)
	}
}

func TestNewReplyEngineRejectsBadPolicy(t *testing.T) {
	_, err := NewReplyEngine(context.Background(), "package broken\n\noverride := ")
	assert.Error(t, err)
}

func TestNewReplyEngineFromFile(t *testing.T) {
	path := t.TempDir() + "/policy.rego"
	content := "package reply_policy\n\nimport rego.v1\n\noverride := \"custom\" if { input.prompt == \"ping\" }\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	e, err := NewReplyEngineFromFile(context.Background(), path)
	require.NoError(t, err)

	got, ok, err := e.Override(context.Background(), ReplyInput{Prompt: "ping", Variant: "chat"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "custom", got)

	_, err = NewReplyEngineFromFile(context.Background(), t.TempDir()+"/missing.rego")
	assert.Error(t, err)
}
