package congress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"congresswire/app/database"
	"congresswire/app/fetch"
)

// listVotes pages through the House roll call listing for the target
// date's congress and keeps the votes taken on that date. The API has
// no Senate vote endpoint.
func (c *Client) listVotes(ctx context.Context, date time.Time) ([]fetch.Record, error) {
	congress := CongressForDate(date)

	var records []fetch.Record
	offset := 0

	for {
		query := url.Values{}
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(pageSize))

		slog.Debug("Fetching votes", "congress", congress, "offset", offset)

		var page voteListResponse
		if err := c.getJSON(ctx, fmt.Sprintf("/house-vote/%d", congress), query, &page); err != nil {
			return nil, fmt.Errorf("failed to list votes: %w", err)
		}

		for _, raw := range page.Votes {
			var entry voteEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				slog.Warn("Skipping unparseable vote entry", "error", err)
				continue
			}

			if !sameDay(entry.StartDate, date) {
				continue
			}

			records = append(records, normalizeVote(entry, raw, date))
		}

		if len(page.Votes) < pageSize {
			break
		}
		offset += pageSize
	}

	slog.Debug("Votes matched for date", "count", len(records), "date", date.Format(database.DateLayout))
	return records, nil
}

func normalizeVote(entry voteEntry, raw json.RawMessage, date time.Time) fetch.Record {
	session := entry.SessionNumber
	if session == 0 {
		session = 1
	}

	title := entry.Question
	if entry.LegislationType != "" && entry.LegislationNumber != "" {
		bill := fmt.Sprintf("%s %s", entry.LegislationType, entry.LegislationNumber)
		if title != "" {
			title = fmt.Sprintf("%s: %s", title, bill)
		} else {
			title = bill
		}
	}

	return fetch.Record{
		NaturalKey:   fmt.Sprintf("%d-%d-house-%d", entry.Congress, session, entry.RollCallNumber),
		ActivityDate: date,
		Payload: database.Payload{
			Title:   title,
			Summary: entry.Description,
			Result:  normalizeVoteResult(entry.Result),
			URL:     entry.URL,
			RawData: string(raw),
		},
	}
}

// normalizeVoteResult collapses the free-form result string into the
// small vocabulary used in posts.
func normalizeVoteResult(result string) string {
	lower := strings.ToLower(result)
	switch {
	case strings.Contains(lower, "passed"):
		return "Passed"
	case strings.Contains(lower, "failed"):
		return "Failed"
	case strings.Contains(lower, "agreed"):
		return "Agreed to"
	case strings.Contains(lower, "rejected"):
		return "Rejected"
	}
	return result
}
