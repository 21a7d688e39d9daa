package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"congresswire/app/database"
	"congresswire/app/retry"
)

const (
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"
	maxSummaryTokens = 150

	// Upstream payloads can run long; the prompt only needs an excerpt.
	maxExcerpt = 3000
)

// AnthropicClient generates item summaries through the Anthropic
// messages API.
type AnthropicClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewAnthropicClient creates a new summarization client
func NewAnthropicClient(baseURL, apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

var _ Summarizer = (*AnthropicClient)(nil)

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Summarize returns a 1-2 sentence neutral summary of the item's
// activity, suitable for a social post.
func (c *AnthropicClient) Summarize(ctx context.Context, item database.Item) (string, error) {
	if c.apiKey == "" {
		return "", retry.Permanent(errors.New("Anthropic API key not configured"))
	}

	request := messagesRequest{
		Model:     c.model,
		MaxTokens: maxSummaryTokens,
		Messages:  []message{{Role: "user", Content: buildPrompt(item)}},
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", retry.Transient(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retry.Transient(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", retry.FromHTTPStatus(resp.StatusCode,
			fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status))
	}

	var decoded messagesResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", retry.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	if len(decoded.Content) == 0 {
		return "", retry.Permanent(errors.New("empty completion"))
	}

	return strings.TrimSpace(decoded.Content[0].Text), nil
}

func buildPrompt(item database.Item) string {
	var b strings.Builder

	switch item.Kind {
	case database.KindVote:
		b.WriteString("Summarize this Congressional vote in 1 sentence (max 150 characters).\n")
		b.WriteString("Include the result and what was voted on. Be factual.\n\n")
		fmt.Fprintf(&b, "Vote Question: %s\n", item.Title)
		fmt.Fprintf(&b, "Result: %s\n", item.Result)
	case database.KindBill:
		b.WriteString("Summarize this Congressional bill in 1-2 sentences (max 200 characters).\n")
		b.WriteString("Focus on: what it does, who it affects, and its current status.\n")
		b.WriteString("Be factual and neutral. No hashtags.\n\n")
		fmt.Fprintf(&b, "Bill Title: %s\n", item.Title)
		if item.Result != "" {
			fmt.Fprintf(&b, "Latest Action: %s\n", item.Result)
		}
	case database.KindSpeech:
		b.WriteString("Summarize this Congressional floor speech in 1-2 sentences (max 200 characters).\n")
		b.WriteString("Focus on: the main argument or announcement, and any specific bills/policies mentioned.\n")
		b.WriteString("Be factual and neutral. No hashtags.\n\n")
		fmt.Fprintf(&b, "Speaker: %s\n", item.Sponsor)
		if item.Title != "" {
			fmt.Fprintf(&b, "Topic: %s\n", item.Title)
		}
	}

	if item.Summary != "" {
		fmt.Fprintf(&b, "Details (excerpt): %s\n", excerpt(item.Summary))
	}

	b.WriteString("\nSummary:")
	return b.String()
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxExcerpt {
		return text
	}
	return string(runes[:maxExcerpt])
}
