package provider

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Roles at the orchestrator boundary. Adapters translate these to whatever
// labels their backend's chat API expects.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior conversation message handed to a provider.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates a text reply given a formatted prompt and prior turns.
// Implementations append the prompt as the final user turn before invoking
// their backend. Network and vendor failures surface as errors; a missing
// credential instead yields a marked error string so the session can continue
// with degraded capability.
type Provider interface {
	Generate(ctx context.Context, prompt string, history []Turn) (string, error)
	Name() string
}

const systemPrompt = "You are a helpful assistant that personalizes replies " +
	"using the known facts about the user included in the prompt."

// errorReplyPrefix marks degraded replies produced without vendor access.
const errorReplyPrefix = "Error:"

func missingKeyReply(vendor, envVar string) string {
	return fmt.Sprintf("%s %s API key missing. Set %s to enable this provider.",
		errorReplyPrefix, vendor, envVar)
}

// Config controls provider selection and per-vendor settings.
type Config struct {
	Name string

	OpenAIAPIKey string
	OpenAIModel  string

	AnthropicAPIKey string
	AnthropicModel  string

	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
}

// New selects a provider by name. An unknown or empty name falls back to the
// deterministic mock so the agent stays usable offline; the fallback is
// logged, never an error.
func New(cfg Config) Provider {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	switch name {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "anthropic", "claude":
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case "gemini", "google":
		return NewGeminiProvider(cfg.GoogleAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
	case "", "mock":
		if name == "" {
			log.Printf("llm provider not configured; using mock")
		}
		return NewMockProvider()
	default:
		log.Printf("unknown llm provider %q; falling back to mock", cfg.Name)
		return NewMockProvider()
	}
}
