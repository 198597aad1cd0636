package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

// ProviderRequest is a fully resolved request handed to a backend
type ProviderRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	MaxTokens    int
}

// ProviderResponse carries exactly one provider-native response.
// Kind selects which field is set.
type ProviderResponse struct {
	Kind      Provider
	Gemini    *genai.GenerateContentResponse
	OpenAI    *openai.ChatCompletionResponse
	Anthropic *anthropic.Message
}

// Backend sends requests to one provider SDK
type Backend interface {
	Name() Provider
	Send(ctx context.Context, req ProviderRequest) (ProviderResponse, error)
	Close() error
}

// NewBackend creates the backend selected by config.Provider
func NewBackend(ctx context.Context, config *Config, apiKey string) (Backend, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for provider %s", config.Provider)
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiBackend(ctx, apiKey)
	case ProviderOpenAI:
		return NewOpenAIBackend(apiKey), nil
	case ProviderAnthropic:
		return NewAnthropicBackend(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}

// normalize converts a provider-native response into a Response.
// A response with no text content is malformed.
func normalize(resp ProviderResponse, requestedModel string) (*Response, error) {
	var out *Response

	switch resp.Kind {
	case ProviderGemini:
		if resp.Gemini == nil {
			return nil, NewMalformedResponse("gemini response missing", "", nil)
		}
		out = normalizeGemini(resp.Gemini)
	case ProviderOpenAI:
		if resp.OpenAI == nil {
			return nil, NewMalformedResponse("openai response missing", "", nil)
		}
		out = normalizeOpenAI(resp.OpenAI)
	case ProviderAnthropic:
		if resp.Anthropic == nil {
			return nil, NewMalformedResponse("anthropic response missing", "", nil)
		}
		out = normalizeAnthropic(resp.Anthropic)
	default:
		return nil, NewMalformedResponse(fmt.Sprintf("unknown response kind %q", resp.Kind), "", nil)
	}

	if out.Model == "" {
		out.Model = requestedModel
	}
	if strings.TrimSpace(out.Content) == "" {
		return nil, NewMalformedResponse(
			fmt.Sprintf("%s returned no text content (finish reason %q)", resp.Kind, out.FinishReason), "", nil)
	}
	return out, nil
}

func normalizeGemini(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]
		out.FinishReason = strings.ToLower(candidate.FinishReason.String())
		if candidate.Content != nil {
			var parts []string
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					parts = append(parts, string(text))
				}
			}
			out.Content = strings.Join(parts, "")
		}
	}
	if resp.UsageMetadata != nil {
		out.Usage = &Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out
}

func normalizeOpenAI(resp *openai.ChatCompletionResponse) *Response {
	out := &Response{
		Model: resp.Model,
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return out
}

func normalizeAnthropic(msg *anthropic.Message) *Response {
	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	input := int(msg.Usage.InputTokens)
	output := int(msg.Usage.OutputTokens)
	return &Response{
		Content:      strings.Join(parts, ""),
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage: &Usage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
	}
}

// wrapProviderError converts an SDK error into a ProviderError with the
// HTTP status code when the SDK exposes one
func wrapProviderError(provider Provider, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var existing *ProviderError
	if errors.As(err, &existing) {
		return err
	}

	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode(err),
		Cause:      err,
	}
}

func statusCode(err error) int {
	var openaiAPI *openai.APIError
	if errors.As(err, &openaiAPI) {
		return openaiAPI.HTTPStatusCode
	}
	var openaiReq *openai.RequestError
	if errors.As(err, &openaiReq) {
		return openaiReq.HTTPStatusCode
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode
	}
	var googleErr *googleapi.Error
	if errors.As(err, &googleErr) {
		return googleErr.Code
	}
	return 0
}
