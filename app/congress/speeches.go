package congress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"congresswire/app/database"
	"congresswire/app/fetch"
)

// listSpeeches resolves the daily Congressional Record issue for the
// target date and flattens its article granules into speech records.
// A date without a Record issue yields no speeches, not an error.
func (c *Client) listSpeeches(ctx context.Context, date time.Time) ([]fetch.Record, error) {
	issues, err := c.listRecordIssues(ctx, date)
	if err != nil {
		if errors.Is(err, errNotFound) {
			slog.Debug("No Congressional Record for date", "date", date.Format(database.DateLayout))
			return nil, nil
		}
		return nil, err
	}

	var records []fetch.Record
	for _, issue := range issues {
		articles, err := c.listIssueArticles(ctx, issue)
		if err != nil {
			if errors.Is(err, errNotFound) {
				continue
			}
			return nil, err
		}

		for _, section := range articles {
			for _, raw := range section.SectionArticles {
				var entry article
				if err := json.Unmarshal(raw, &entry); err != nil {
					slog.Warn("Skipping unparseable record article", "error", err)
					continue
				}
				if entry.GranuleID == "" {
					continue
				}

				records = append(records, fetch.Record{
					NaturalKey:   entry.GranuleID,
					ActivityDate: date,
					Payload: database.Payload{
						Title:   entry.Title,
						Sponsor: entry.Speaker,
						URL:     entry.URL,
						RawData: string(raw),
					},
				})
			}
		}
	}

	slog.Debug("Speeches matched for date", "count", len(records), "date", date.Format(database.DateLayout))
	return records, nil
}

// listRecordIssues returns the daily Record issues published on the
// target date, usually zero or one.
func (c *Client) listRecordIssues(ctx context.Context, date time.Time) ([]recordIssue, error) {
	var page recordListResponse
	if err := c.getJSON(ctx, "/daily-congressional-record", nil, &page); err != nil {
		return nil, fmt.Errorf("failed to list Record issues: %w", err)
	}

	var matched []recordIssue
	for _, issue := range page.Issues {
		if sameDay(issue.IssueDate, date) {
			matched = append(matched, issue)
		}
	}
	return matched, nil
}

func (c *Client) listIssueArticles(ctx context.Context, issue recordIssue) ([]articleSection, error) {
	path := fmt.Sprintf("/daily-congressional-record/%s/%s/articles", issue.VolumeNumber, issue.IssueNumber)

	var page articlesResponse
	if err := c.getJSON(ctx, path, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to list Record articles: %w", err)
	}
	return page.Articles, nil
}
