// Package llmtest provides a scriptable llm.Completer for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/resume-optimizer/internal/llm"
)

// MockCompleter implements llm.Completer with overridable behavior.
// Every request is recorded.
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)
	ModelFunc    func(tier llm.ModelTier) string

	mu       sync.Mutex
	requests []llm.Request
}

// Complete records the request and delegates to CompleteFunc
func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &llm.Response{Content: "{}", Model: m.Model(req.Tier)}, nil
}

// Model returns "mock-<tier>" unless ModelFunc is set
func (m *MockCompleter) Model(tier llm.ModelTier) string {
	if m.ModelFunc != nil {
		return m.ModelFunc(tier)
	}
	return fmt.Sprintf("mock-%s", tier)
}

// Requests returns a copy of the recorded requests
func (m *MockCompleter) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of recorded requests
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Replies returns a MockCompleter that answers with contents in order and
// fails once they are exhausted
func Replies(contents ...string) *MockCompleter {
	var mu sync.Mutex
	next := 0
	m := &MockCompleter{}
	m.CompleteFunc = func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(contents) {
			return nil, fmt.Errorf("llmtest: unexpected call %d", next+1)
		}
		content := contents[next]
		next++
		return &llm.Response{Content: content, Model: m.Model(req.Tier)}, nil
	}
	return m
}

// UserContent returns the last user message of a request
func UserContent(req llm.Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == llm.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}
