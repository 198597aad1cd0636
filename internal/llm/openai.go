package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend sends requests to the OpenAI chat completions API
type OpenAIBackend struct {
	client *openai.Client
}

// NewOpenAIBackend creates an OpenAI backend
func NewOpenAIBackend(apiKey string) *OpenAIBackend {
	return &OpenAIBackend{client: openai.NewClient(apiKey)}
}

// Name returns ProviderOpenAI
func (b *OpenAIBackend) Name() Provider {
	return ProviderOpenAI
}

// Send issues one chat completion
func (b *OpenAIBackend) Send(ctx context.Context, req ProviderRequest) (ProviderResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return ProviderResponse{}, wrapProviderError(ProviderOpenAI, err)
	}
	return ProviderResponse{Kind: ProviderOpenAI, OpenAI: &resp}, nil
}

// Close is a no-op; the HTTP client holds no resources
func (b *OpenAIBackend) Close() error {
	return nil
}
