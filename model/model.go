package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Request is one stateless completion call.
type Request struct {
	Role   string `json:"role"`   // Persona the model should adopt
	Prompt string `json:"prompt"` // Full prompt text
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final completion text of one call.
type Response struct {
	Text  string      `json:"text"`
	Model string      `json:"model"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "gemini", "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface the router needs from a backend.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Lister enumerates the model ids a provider currently serves.
type Lister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(ctx context.Context) ([]string, error)

// ListModels implements Lister.
func (f ListerFunc) ListModels(ctx context.Context) ([]string, error) { return f(ctx) }

// ErrNoCandidate reports that none of the preferred ids is served by the provider.
var ErrNoCandidate = errors.New("no preferred model available")

// Resolve picks the model id a backend should use. It returns the first
// candidate served by the provider. When the listing fails, or no candidate is
// served, it returns stable together with an error describing why, so the
// backend is never left without a model.
//
// Ids are compared ignoring a leading "models/" segment (Gemini lists
// "models/gemini-2.0-flash").
func Resolve(ctx context.Context, l Lister, candidates []string, stable string) (string, error) {
	available, err := l.ListModels(ctx)
	if err != nil {
		return stable, fmt.Errorf("list models: %w", err)
	}

	served := make(map[string]struct{}, len(available))
	for _, id := range available {
		served[normalizeID(id)] = struct{}{}
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := served[normalizeID(c)]; ok {
			return c, nil
		}
	}

	return stable, ErrNoCandidate
}

func normalizeID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "models/")
}

// MockModel is a lightweight in‑memory Model useful for tests & examples.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:     name,
			Provider: provider,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an exact prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetError makes every subsequent Generate call fail with err (nil clears it).
func (m *MockModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the requests received so far.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Generate implements Model. Unknown prompts yield "Mock response to: <prompt>".
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	text, ok := m.responses[req.Prompt]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}

	return &Response{Text: text, Model: m.info.Name}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
