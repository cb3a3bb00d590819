package provider

import (
	"context"
	"fmt"
	"log"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o"

// openaiRoleBuilders maps boundary roles to OpenAI message constructors.
// Unknown roles degrade to user messages.
var openaiRoleBuilders = map[string]func(string) openai.ChatCompletionMessageParamUnion{
	RoleUser:      openai.UserMessage[string],
	RoleAssistant: openai.AssistantMessage[string],
}

// OpenAIProvider generates replies through OpenAI's chat completions API.
type OpenAIProvider struct {
	client openai.Client
	apiKey string
	model  string
}

// NewOpenAIProvider never fails on a missing key; Generate degrades to a
// marked error reply instead so the session survives misconfiguration.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	p := &OpenAIProvider{apiKey: apiKey, model: model}
	if apiKey == "" {
		log.Printf("openai provider: OPENAI_API_KEY not set; replies will be degraded")
		return p
	}
	p.client = openai.NewClient(option.WithAPIKey(apiKey))
	return p
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, history []Turn) (string, error) {
	if p.apiKey == "" {
		return missingKeyReply("OpenAI", "OPENAI_API_KEY"), nil
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, t := range history {
		build, ok := openaiRoleBuilders[t.Role]
		if !ok {
			build = openai.UserMessage
		}
		messages = append(messages, build(t.Content))
	}
	messages = append(messages, openai.UserMessage(prompt))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai completion: response contained no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
