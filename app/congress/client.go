package congress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"congresswire/app/database"
	"congresswire/app/fetch"
	"congresswire/app/retry"
)

// pageSize is the Congress.gov maximum page size.
const pageSize = 250

var errNotFound = errors.New("not found")

// Client fetches legislative activity from the Congress.gov v3 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// NewClient creates a new Congress.gov API client
func NewClient(baseURL, apiKey, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		userAgent:  userAgent,
	}
}

var _ fetch.Source = (*Client)(nil)

// ListActivity returns the normalized activity records of one kind for
// the given date.
func (c *Client) ListActivity(ctx context.Context, kind database.Kind, date time.Time) ([]fetch.Record, error) {
	switch kind {
	case database.KindVote:
		return c.listVotes(ctx, date)
	case database.KindBill:
		return c.listBills(ctx, date)
	case database.KindSpeech:
		return c.listSpeeches(ctx, date)
	}
	return nil, retry.Permanent(fmt.Errorf("unknown activity kind: %s", kind))
}

// CongressForDate maps a calendar date to its congress number. The
// 119th Congress convened in January 2025.
func CongressForDate(date time.Time) int {
	year := date.Year()
	switch {
	case year >= 2025:
		return 119
	case year >= 2023:
		return 118
	default:
		return 117
	}
}

// getJSON performs one authenticated GET against the API and decodes
// the response body into out. Failures carry a retry classification:
// 429 and server errors are transient, other client errors permanent.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c.apiKey == "" {
		return retry.Permanent(errors.New("Congress.gov API key not configured"))
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	query.Set("format", "json")

	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Transient(fmt.Errorf("failed to fetch %s: %w", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return retry.Permanent(fmt.Errorf("%w: %s", errNotFound, path))
	}
	if resp.StatusCode != http.StatusOK {
		return retry.FromHTTPStatus(resp.StatusCode, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Transient(fmt.Errorf("failed to read response body: %w", err))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return retry.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

// sameDay reports whether the upstream timestamp falls on the target
// date. Timestamps arrive as ISO dates or RFC 3339 with offsets.
func sameDay(timestamp string, date time.Time) bool {
	if len(timestamp) < len(database.DateLayout) {
		return false
	}
	return timestamp[:len(database.DateLayout)] == date.Format(database.DateLayout)
}
