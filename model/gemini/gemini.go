// Package gemini provides a model.Model backed by the Google Gemini API via
// the google.golang.org/genai client.
package gemini

import (
	"context"
	"fmt"
	"slices"

	"google.golang.org/genai"

	"github.com/gashibujar1988-crypto/Robotrna/model"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// Model wraps genai's generateContent behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewClient creates a Gemini API client for apiKey. A non-empty baseURL
// replaces the public endpoint.
func NewClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return client, nil
}

// NewModelFromClient creates a new Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:           "gemini-2.0-flash",
		Temperature:     0.7,
		MaxOutputTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model. Gemini receives the role inline as a
// "ROLE: ... TASK: ..." preamble rather than a system instruction.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	prompt := req.Prompt
	if req.Role != "" {
		prompt = fmt.Sprintf("ROLE: %s\n\nTASK: %s", req.Role, req.Prompt)
	}

	temperature := m.opts.Temperature
	resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: m.opts.MaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	out := &model.Response{
		Text:  resp.Text(),
		Model: m.opts.Model,
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}

	return out, nil
}

// ListModels returns the names of models supporting generateContent.
func ListModels(ctx context.Context, client *genai.Client) ([]string, error) {
	var ids []string
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("gemini list models: %w", err)
		}
		if len(m.SupportedActions) == 0 || slices.Contains(m.SupportedActions, "generateContent") {
			ids = append(ids, m.Name)
		}
	}
	return ids, nil
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: "gemini",
	}
}
