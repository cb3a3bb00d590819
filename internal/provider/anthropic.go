package provider

import (
	"context"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 1024

// anthropicRoleBuilders maps boundary roles to Anthropic message
// constructors. Unknown roles degrade to user messages.
var anthropicRoleBuilders = map[string]func(...anthropic.ContentBlockParamUnion) anthropic.MessageParam{
	RoleUser:      anthropic.NewUserMessage,
	RoleAssistant: anthropic.NewAssistantMessage,
}

// AnthropicProvider generates replies through Anthropic's messages API.
type AnthropicProvider struct {
	client anthropic.Client
	apiKey string
	model  string
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	p := &AnthropicProvider{apiKey: apiKey, model: model}
	if apiKey == "" {
		log.Printf("anthropic provider: ANTHROPIC_API_KEY not set; replies will be degraded")
		return p
	}
	p.client = anthropic.NewClient(option.WithAPIKey(apiKey))
	return p
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, history []Turn) (string, error) {
	if p.apiKey == "" {
		return missingKeyReply("Anthropic", "ANTHROPIC_API_KEY"), nil
	}

	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, t := range history {
		build, ok := anthropicRoleBuilders[t.Role]
		if !ok {
			build = anthropic.NewUserMessage
		}
		messages = append(messages, build(anthropic.NewTextBlock(t.Content)))
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic message: response contained no content blocks")
	}
	return resp.Content[0].Text, nil
}
