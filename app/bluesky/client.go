package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"congresswire/app/publish"
	"congresswire/app/retry"
)

// postCollection is the AT Protocol record collection for feed posts.
const postCollection = "app.bsky.feed.post"

// Client publishes posts to a Bluesky account over the AT Protocol
// XRPC API. A session is created lazily on first publish and reused
// until the server rejects it.
type Client struct {
	httpClient *http.Client
	host       string
	handle     string
	password   string

	session *session
}

type session struct {
	AccessJWT string `json:"accessJwt"`
	DID       string `json:"did"`
}

type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// NewClient creates a new Bluesky client
func NewClient(host, handle, password string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		host:       host,
		handle:     handle,
		password:   password,
	}
}

var _ publish.Sink = (*Client)(nil)

// Publish delivers one post as an app.bsky.feed.post record. A nil
// return means the server acknowledged the record.
func (c *Client) Publish(ctx context.Context, post publish.Post) error {
	if c.handle == "" || c.password == "" {
		return retry.Permanent(errors.New("Bluesky credentials not configured"))
	}

	if c.session == nil {
		if err := c.login(ctx); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
	}

	record := map[string]any{
		"$type":     postCollection,
		"text":      post.Text,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	body := map[string]any{
		"repo":       c.session.DID,
		"collection": postCollection,
		"record":     record,
	}

	var created createRecordResponse
	err := c.postJSON(ctx, "/xrpc/com.atproto.repo.createRecord", c.session.AccessJWT, body, &created)
	if err != nil {
		if isUnauthorized(err) {
			// Expired session. Drop it and report transient so the retry
			// policy re-enters Publish with a fresh login.
			c.session = nil
			return retry.Transient(fmt.Errorf("session rejected: %w", err))
		}
		return fmt.Errorf("failed to create record: %w", err)
	}

	slog.Debug("Record created", "uri", created.URI, "kind", string(post.Kind))
	return nil
}

func (c *Client) login(ctx context.Context) error {
	body := map[string]any{
		"identifier": c.handle,
		"password":   c.password,
	}

	var s session
	if err := c.postJSON(ctx, "/xrpc/com.atproto.server.createSession", "", body, &s); err != nil {
		if isUnauthorized(err) {
			// Rejected credentials will not heal with a retry.
			return retry.Permanent(err)
		}
		return err
	}
	if s.AccessJWT == "" || s.DID == "" {
		return retry.Permanent(errors.New("incomplete session response"))
	}

	c.session = &s
	slog.Debug("Bluesky session created", "did", s.DID)
	return nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.host+path, bytes.NewReader(payload))
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Transient(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Transient(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			return &unauthorizedError{status: resp.StatusCode, body: string(data)}
		}
		return retry.FromHTTPStatus(resp.StatusCode,
			fmt.Errorf("HTTP error: %d %s: %s", resp.StatusCode, resp.Status, truncateBody(data)))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return retry.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

type unauthorizedError struct {
	status int
	body   string
}

func (e *unauthorizedError) Error() string {
	return fmt.Sprintf("HTTP error: %d: %s", e.status, e.body)
}

func isUnauthorized(err error) bool {
	var ue *unauthorizedError
	return errors.As(err, &ue)
}

func truncateBody(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max])
	}
	return string(data)
}
