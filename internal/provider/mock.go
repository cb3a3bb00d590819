package provider

import (
	"context"
	"fmt"
)

// MockProvider produces deterministic local replies when no vendor backend is
// configured. It never fails, which keeps the interactive loop and the test
// suite independent of network access.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) Generate(_ context.Context, prompt string, history []Turn) (string, error) {
	return fmt.Sprintf("[mock] I received your message: '%s'. Context size: %d.", prompt, len(history)), nil
}
