// Package coach calls a hosted language-model completion API to turn a
// logged approach into a short piece of coaching feedback.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wingmate/wingmate/internal/domain/model"
	"github.com/wingmate/wingmate/pkg/logger"
)

const systemPrompt = `You are a supportive dating-confidence coach inside a mobile app.
The user just logged a real-world approach attempt. Reply with two to four
warm, practical sentences: acknowledge what they did, name one thing to
keep, and suggest one small adjustment. Never shame the user.`

// DebriefRequest carries the context the model sees.
type DebriefRequest struct {
	Profile model.Profile
	Outcome model.Outcome
	Note    string
}

// Client produces coaching feedback for a logged approach.
type Client interface {
	Debrief(ctx context.Context, req DebriefRequest) (string, error)
}

type httpClient struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
	logger  logger.Logger
}

// New creates a completion-API client. The base URL points at any
// OpenAI-compatible /v1/chat/completions endpoint.
func New(opts ...Option) Client {
	c := &httpClient{
		baseURL: "https://api.openai.com",
		model:   "gpt-4o-mini",
		hc:      &http.Client{},
		logger:  logger.Get().Named("coach"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *httpClient) Debrief(ctx context.Context, req DebriefRequest) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode debrief request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build debrief request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call completion api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion api status %d: %s", resp.StatusCode, truncate(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("completion api returned no content")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// userPrompt renders the logged approach and the profile counters into
// the user turn.
func userPrompt(req DebriefRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome just logged: %s.\n", outcomeLabel(req.Outcome))
	fmt.Fprintf(&b, "Lifetime approaches: %d, current streak: %d days, success rate: %.0f%%.\n",
		req.Profile.TotalApproaches, req.Profile.CurrentStreak, req.Profile.SuccessRate)
	if note := strings.TrimSpace(req.Note); note != "" {
		fmt.Fprintf(&b, "The user added: %q\n", note)
	}
	return b.String()
}

func outcomeLabel(o model.Outcome) string {
	switch o {
	case model.OutcomeGotNumber:
		return "got their number"
	case model.OutcomeFriendly:
		return "friendly conversation"
	case model.OutcomeConversationNoNumber:
		return "good conversation, no number"
	case model.OutcomeNotInterested:
		return "they weren't interested"
	case model.OutcomeDidNotApproach:
		return "froze and didn't approach"
	case model.OutcomeTimerCompleted:
		return "completed the approach timer"
	default:
		return "approach attempt"
	}
}

func truncate(raw []byte) string {
	const limit = 200
	s := string(raw)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
