package builtin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gashibujar1988-crypto/Robotrna/tool"
)

func registry(t *testing.T) *tool.Registry {
	t.Helper()
	r, err := tool.NewRegistry(Tools())
	require.NoError(t, err)
	return r
}

func TestTools_Registered(t *testing.T) {
	assert.Equal(t, []string{"post_to_linkedin", "create_social_draft", "send_email", "create_email_draft", "google_search"}, registry(t).Names())
}

func TestCreateSocialDraft(t *testing.T) {
	out, err := registry(t).Execute(context.Background(), "create_social_draft", `Launch day "soon"`)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, DraftPrefix))

	var d map[string]string
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(out, DraftPrefix)), &d))
	assert.Equal(t, "linkedin", d["platform"])
	assert.Equal(t, `Launch day "soon"`, d["content"])
}

func TestPostToLinkedIn(t *testing.T) {
	out, err := registry(t).Execute(context.Background(), "post_to_linkedin", "hello world")
	require.NoError(t, err)
	assert.Contains(t, out, "[SIMULATION] Posted to LinkedIn: 'hello world'")

	_, err = registry(t).Execute(context.Background(), "post_to_linkedin", "  ")
	assert.Error(t, err)
}

func TestSendEmail(t *testing.T) {
	out, err := registry(t).Execute(context.Background(), "send_email", "ceo@acme.io | Hi | Body with | pipe")
	require.NoError(t, err)
	assert.Contains(t, out, "Email would be sent to: ceo@acme.io")
	assert.Contains(t, out, "Subject: Hi")
	assert.Contains(t, out, "Body with | pipe")
}

func TestEmail_InvalidInput(t *testing.T) {
	r := registry(t)

	for _, in := range []string{"just a sentence", "nobody | subj | body"} {
		_, err := r.Execute(context.Background(), "create_email_draft", in)
		var te *tool.Error
		require.ErrorAs(t, err, &te, in)
		assert.Equal(t, tool.CodeExecution, te.Code)
	}
}

func TestCreateEmailDraft_TruncatesBody(t *testing.T) {
	body := strings.Repeat("a", 150)
	out, err := registry(t).Execute(context.Background(), "create_email_draft", "x@y.z | S | "+body)
	require.NoError(t, err)
	assert.Contains(t, out, strings.Repeat("a", 100)+"...")
	assert.NotContains(t, out, strings.Repeat("a", 101))
}

func searchRegistry(t *testing.T, opts SearchOptions) *tool.Registry {
	t.Helper()
	r, err := tool.NewRegistry(Tools(func(o *Options) { o.Search = opts }))
	require.NoError(t, err)
	return r
}

func TestGoogleSearch_FormatsResults(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"Acme Marketing","link":"https://acme.example","snippet":"Austin agency"},
			{"title":"Bolt Media","link":"https://bolt.example","snippet":"Growth studio"}
		]}`))
	}))
	defer srv.Close()

	r := searchRegistry(t, SearchOptions{APIKey: "k", EngineID: "cx-1", Endpoint: srv.URL, Results: 3})

	out, err := r.Execute(context.Background(), "google_search", "  marketing agencies in Austin ")
	require.NoError(t, err)

	assert.Equal(t, "Title: Acme Marketing\nLink: https://acme.example\nSnippet: Austin agency\n---\n"+
		"Title: Bolt Media\nLink: https://bolt.example\nSnippet: Growth studio\n---", out)
	assert.Equal(t, "k", got.Get("key"))
	assert.Equal(t, "cx-1", got.Get("cx"))
	assert.Equal(t, "marketing agencies in Austin", got.Get("q"))
	assert.Equal(t, "3", got.Get("num"))
}

func TestGoogleSearch_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"searchInformation":{"totalResults":"0"}}`))
	}))
	defer srv.Close()

	out, err := searchRegistry(t, SearchOptions{APIKey: "k", EngineID: "cx", Endpoint: srv.URL}).
		Execute(context.Background(), "google_search", "zzzz")
	require.NoError(t, err)
	assert.Equal(t, "No results found.", out)
}

func TestGoogleSearch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		opts    SearchOptions
		input   string
		wantErr string
	}{
		{"not configured", SearchOptions{}, "news", "GOOGLE_SEARCH_API_KEY"},
		{"engine missing", SearchOptions{APIKey: "k"}, "news", "GOOGLE_CSE_ID"},
		{"empty query", SearchOptions{APIKey: "k", EngineID: "cx", Endpoint: srv.URL}, "  ", "query is empty"},
		{"api error", SearchOptions{APIKey: "k", EngineID: "cx", Endpoint: srv.URL}, "news", "status 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := searchRegistry(t, tt.opts).Execute(context.Background(), "google_search", tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var te *tool.Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tool.CodeExecution, te.Code)
		})
	}
}

func TestGoogleSearch_NotConfiguredIsTyped(t *testing.T) {
	_, err := registry(t).Execute(context.Background(), "google_search", "news")
	assert.ErrorIs(t, err, ErrSearchNotConfigured)
}
