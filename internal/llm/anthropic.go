package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicBackend sends requests to the Anthropic Messages API
type AnthropicBackend struct {
	client anthropic.Client
}

// NewAnthropicBackend creates an Anthropic backend
func NewAnthropicBackend(apiKey string) *AnthropicBackend {
	return &AnthropicBackend{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

// Name returns ProviderAnthropic
func (b *AnthropicBackend) Name() Provider {
	return ProviderAnthropic
}

// Send issues one Messages call. System prompts travel outside the message list.
func (b *AnthropicBackend) Send(ctx context.Context, req ProviderRequest) (ProviderResponse, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		block := anthropic.NewTextBlock(msg.Content)
		switch msg.Role {
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(block))
		case RoleSystem:
			// folded into the system prompt below
		default:
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	system := req.SystemPrompt
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages:    messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return ProviderResponse{}, wrapProviderError(ProviderAnthropic, err)
	}
	return ProviderResponse{Kind: ProviderAnthropic, Anthropic: msg}, nil
}

// Close is a no-op; the HTTP client holds no resources
func (b *AnthropicBackend) Close() error {
	return nil
}
