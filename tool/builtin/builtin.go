// Package builtin provides the tools shipped with the service. The social and
// email tools run in simulation mode: no external API is contacted and each
// call returns a deterministic description of what would have happened.
// google_search queries the Google Custom Search JSON API and fails with
// ErrSearchNotConfigured until it has credentials.
package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gashibujar1988-crypto/Robotrna/tool"
)

// DraftPrefix marks tool output the dashboard renders as an editable draft.
const DraftPrefix = "DRAFT_READY|"

const previewLen = 100

// Options configures the built-in tools.
type Options struct {
	Search SearchOptions
}

// Tools returns every built-in tool.
func Tools(optFns ...func(o *Options)) []tool.Tool {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	return []tool.Tool{
		tool.NewFunctionTool("post_to_linkedin",
			"Publish a text update to LinkedIn. Input: the post text.",
			postToLinkedIn),
		tool.NewFunctionTool("create_social_draft",
			"Prepare a LinkedIn post for review without publishing. Input: the post text.",
			createSocialDraft),
		tool.NewFunctionTool("send_email",
			"Send an email. Input: recipient | subject | body",
			sendEmail),
		tool.NewFunctionTool("create_email_draft",
			"Create an email draft for approval. Input: recipient | subject | body",
			createEmailDraft),
		tool.NewFunctionTool("google_search",
			"Search the web with Google. Input: the search query.",
			newSearcher(opts.Search).search),
	}
}

func postToLinkedIn(_ context.Context, input string) (string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", errors.New("post text is empty")
	}
	return fmt.Sprintf("[SIMULATION] Posted to LinkedIn: '%s'\n(Real posting requires a fresh OAuth Access Token)", text), nil
}

type draft struct {
	Platform string `json:"platform"`
	Content  string `json:"content"`
}

func createSocialDraft(_ context.Context, input string) (string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", errors.New("draft text is empty")
	}
	payload, err := json.Marshal(draft{Platform: "linkedin", Content: text})
	if err != nil {
		return "", err
	}
	return DraftPrefix + string(payload), nil
}

type email struct {
	to, subject, body string
}

// parseEmail splits "to | subject | body". The body may itself contain '|'.
func parseEmail(input string) (email, error) {
	parts := strings.SplitN(input, "|", 3)
	if len(parts) != 3 {
		return email{}, fmt.Errorf("expected input 'recipient | subject | body', got %d field(s)", len(parts))
	}
	e := email{
		to:      strings.TrimSpace(parts[0]),
		subject: strings.TrimSpace(parts[1]),
		body:    strings.TrimSpace(parts[2]),
	}
	if e.to == "" || !strings.Contains(e.to, "@") {
		return email{}, fmt.Errorf("invalid recipient %q", e.to)
	}
	return e, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}

func sendEmail(_ context.Context, input string) (string, error) {
	e, err := parseEmail(input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[SIMULATION MODE]\nEmail would be sent to: %s\nSubject: %s\nBody: %s", e.to, e.subject, preview(e.body)), nil
}

func createEmailDraft(_ context.Context, input string) (string, error) {
	e, err := parseEmail(input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[DRAFT] To: %s | Subject: %s | Body: %s", e.to, e.subject, preview(e.body)), nil
}
