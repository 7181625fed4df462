package domain

import "testing"

func TestParseVariant(t *testing.T) {
	cases := []struct {
		in   string
		want ProviderVariant
		ok   bool
	}{
		{"completion", VariantCompletion, true},
		{"Chat", VariantChat, true},
		{" gemini ", VariantChat, true},
		{"", VariantCompletion, false},
		{"llama", VariantCompletion, false},
	}
	for _, tc := range cases {
		got, ok := ParseVariant(tc.in, VariantCompletion)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseVariant(%q) = %s, %v; want %s, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoleOf(t *testing.T) {
	if RoleOf(SenderUser) != RoleUser {
		t.Fatalf("user sender should map to user role")
	}
	if RoleOf(SenderAssistant) != RoleModel {
		t.Fatalf("assistant sender should map to model role")
	}
	if RoleOf(Sender("bot")) != RoleModel {
		t.Fatalf("legacy bot sender should map to model role")
	}
}
