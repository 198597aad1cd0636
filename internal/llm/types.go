package llm

import "context"

// Role is the author of a chat message
type Role string

// Message roles
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a chat request
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-independent completion request.
// Zero values mean "use the gateway default".
type Request struct {
	Messages     []Message
	SystemPrompt string
	Temperature  *float64
	MaxTokens    int
	// Model overrides Tier when set
	Model string
	Tier  ModelTier
}

// UserPrompt builds a single-message request
func UserPrompt(system, user string, tier ModelTier) Request {
	return Request{
		Messages:     []Message{{Role: RoleUser, Content: user}},
		SystemPrompt: system,
		Tier:         tier,
	}
}

// Usage holds token counters reported by a provider
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the normalized completion result every caller sees
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	Usage        *Usage `json:"usage,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	// Cached is true when the response was served from the response cache
	Cached bool `json:"cached,omitempty"`
}

func (r *Response) clone() *Response {
	out := *r
	if r.Usage != nil {
		usage := *r.Usage
		out.Usage = &usage
	}
	return &out
}

// Completer is the gateway contract consumed by the parsing, selection and
// committee stages
type Completer interface {
	// Complete sends a request and returns the normalized response
	Complete(ctx context.Context, req Request) (*Response, error)
	// Model returns the configured model name for a tier
	Model(tier ModelTier) string
}

// lastUserMessage returns the content of the final user-role message
func lastUserMessage(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content, true
		}
	}
	return "", false
}
