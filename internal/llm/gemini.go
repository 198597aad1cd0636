package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiBackend sends requests to Google Gemini
type GeminiBackend struct {
	client *genai.Client
}

// NewGeminiBackend creates a Gemini backend
func NewGeminiBackend(ctx context.Context, apiKey string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiBackend{client: client}, nil
}

// Name returns ProviderGemini
func (b *GeminiBackend) Name() Provider {
	return ProviderGemini
}

// Send replays prior turns as chat history and sends the final message
func (b *GeminiBackend) Send(ctx context.Context, req ProviderRequest) (ProviderResponse, error) {
	model := b.client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}

	if len(req.Messages) == 0 {
		return ProviderResponse{}, &InvalidRequestError{Message: "no messages"}
	}

	session := model.StartChat()
	for _, msg := range req.Messages[:len(req.Messages)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	last := req.Messages[len(req.Messages)-1]
	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return ProviderResponse{}, wrapProviderError(ProviderGemini, err)
	}
	return ProviderResponse{Kind: ProviderGemini, Gemini: resp}, nil
}

// Close releases the underlying client
func (b *GeminiBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

func geminiRole(role Role) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}
