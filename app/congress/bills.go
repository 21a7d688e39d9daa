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

// listBills pages through the bills updated within the target date.
func (c *Client) listBills(ctx context.Context, date time.Time) ([]fetch.Record, error) {
	congress := CongressForDate(date)
	day := date.Format(database.DateLayout)

	var records []fetch.Record
	offset := 0

	for {
		query := url.Values{}
		query.Set("fromDateTime", day+"T00:00:00Z")
		query.Set("toDateTime", day+"T23:59:59Z")
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(pageSize))

		slog.Debug("Fetching bills", "congress", congress, "date", day, "offset", offset)

		var page billListResponse
		if err := c.getJSON(ctx, fmt.Sprintf("/bill/%d", congress), query, &page); err != nil {
			return nil, fmt.Errorf("failed to list bills: %w", err)
		}

		for _, raw := range page.Bills {
			var entry billEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				slog.Warn("Skipping unparseable bill entry", "error", err)
				continue
			}
			if entry.Type == "" || entry.Number == "" {
				continue
			}

			records = append(records, normalizeBill(entry, raw, date))
		}

		if len(page.Bills) < pageSize {
			break
		}
		offset += pageSize
	}

	slog.Debug("Bills matched for date", "count", len(records), "date", day)
	return records, nil
}

func normalizeBill(entry billEntry, raw json.RawMessage, date time.Time) fetch.Record {
	billType := strings.ToLower(entry.Type)

	// The listing reflects update activity; the latest action date is
	// the day the activity actually happened.
	activityDate := date
	if actionDate, err := time.Parse(database.DateLayout, entry.LatestAction.ActionDate); err == nil {
		activityDate = actionDate
	}

	title := entry.Title
	if title != "" {
		title = fmt.Sprintf("%s %s: %s", strings.ToUpper(entry.Type), entry.Number, title)
	} else {
		title = fmt.Sprintf("%s %s", strings.ToUpper(entry.Type), entry.Number)
	}

	return fetch.Record{
		NaturalKey:   fmt.Sprintf("%d-%s-%s", entry.Congress, billType, entry.Number),
		ActivityDate: activityDate,
		Payload: database.Payload{
			Title:   title,
			Result:  entry.LatestAction.Text,
			URL:     entry.URL,
			RawData: string(raw),
		},
	}
}
