package provider

import (
	"context"
	"strings"
	"testing"
)

func TestNewFallsBackToMockOnUnknownName(t *testing.T) {
	p := New(Config{Name: "ollama-ng"})
	if p.Name() != "mock" {
		t.Fatalf("Name() = %q, want mock", p.Name())
	}
}

func TestNewFallsBackToMockOnEmptyName(t *testing.T) {
	p := New(Config{})
	if p.Name() != "mock" {
		t.Fatalf("Name() = %q, want mock", p.Name())
	}
}

func TestNewSelectsVariantByName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"openai", "openai"},
		{"anthropic", "anthropic"},
		{"claude", "anthropic"},
		{"gemini", "gemini"},
		{"google", "gemini"},
		{"  OpenAI  ", "openai"},
		{"mock", "mock"},
	}
	for _, tc := range cases {
		p := New(Config{Name: tc.name})
		if p.Name() != tc.want {
			t.Fatalf("New(%q).Name() = %q, want %q", tc.name, p.Name(), tc.want)
		}
	}
}

func TestMissingKeyGeneratesMarkedReplyNotError(t *testing.T) {
	providers := []Provider{
		NewOpenAIProvider("", ""),
		NewAnthropicProvider("", ""),
		NewGeminiProvider("", "", ""),
	}
	for _, p := range providers {
		reply, err := p.Generate(context.Background(), "hi", nil)
		if err != nil {
			t.Fatalf("%s Generate() error = %v, want nil", p.Name(), err)
		}
		if !strings.HasPrefix(reply, "Error:") {
			t.Fatalf("%s reply = %q, want marked error string", p.Name(), reply)
		}
		if !strings.Contains(reply, "API key missing") {
			t.Fatalf("%s reply = %q, missing key hint absent", p.Name(), reply)
		}
	}
}

func TestRoleTablesCoverBoundaryRoles(t *testing.T) {
	for _, role := range []string{RoleUser, RoleAssistant} {
		if _, ok := openaiRoleBuilders[role]; !ok {
			t.Fatalf("openai role table missing %q", role)
		}
		if _, ok := anthropicRoleBuilders[role]; !ok {
			t.Fatalf("anthropic role table missing %q", role)
		}
		if _, ok := geminiRoles[role]; !ok {
			t.Fatalf("gemini role table missing %q", role)
		}
	}
	if geminiRoles[RoleAssistant] != "model" {
		t.Fatalf("gemini assistant role = %q, want model", geminiRoles[RoleAssistant])
	}
	if geminiRoles[RoleUser] != "user" {
		t.Fatalf("gemini user role = %q, want user", geminiRoles[RoleUser])
	}
}
