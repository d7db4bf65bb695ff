package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultSearchEndpoint is the Google Custom Search JSON API.
const DefaultSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

// ErrSearchNotConfigured is returned by google_search when the API key or the
// search engine id is missing.
var ErrSearchNotConfigured = errors.New("missing GOOGLE_SEARCH_API_KEY or GOOGLE_CSE_ID")

// SearchOptions configures the google_search tool.
type SearchOptions struct {
	APIKey   string
	EngineID string
	// Endpoint defaults to DefaultSearchEndpoint.
	Endpoint string
	// Results is clamped to 1..10 (default 5).
	Results int
	// Client defaults to an http.Client with a 15s timeout.
	Client *http.Client
}

type searcher struct {
	opts SearchOptions
}

func newSearcher(opts SearchOptions) *searcher {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultSearchEndpoint
	}
	if opts.Results <= 0 {
		opts.Results = 5
	}
	opts.Results = min(opts.Results, 10)
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return &searcher{opts: opts}
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (s *searcher) search(ctx context.Context, input string) (string, error) {
	if s.opts.APIKey == "" || s.opts.EngineID == "" {
		return "", ErrSearchNotConfigured
	}

	query := strings.TrimSpace(input)
	if query == "" {
		return "", errors.New("search query is empty")
	}

	params := url.Values{}
	params.Set("key", s.opts.APIKey)
	params.Set("cx", s.opts.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(s.opts.Results))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("google search: %w", err)
	}

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("google search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("google search: decode response: %w", err)
	}

	if len(out.Items) == 0 {
		return "No results found.", nil
	}

	results := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		results = append(results, fmt.Sprintf("Title: %s\nLink: %s\nSnippet: %s\n---", item.Title, item.Link, item.Snippet))
	}
	return strings.Join(results, "\n"), nil
}
