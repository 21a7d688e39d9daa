package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the storage format for activity dates. ISO dates sort
// lexicographically, which the batch ordering relies on.
const DateLayout = "2006-01-02"

var _ ItemRepository = (*SQLItemRepository)(nil)

// SQLItemRepository handles database operations for legislative items
type SQLItemRepository struct {
	db *DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *DB) *SQLItemRepository {
	return &SQLItemRepository{db: db}
}

const itemColumns = `id, kind, natural_key, activity_date, title, summary, ai_summary,
       result, sponsor, url, raw_data, fetched_at, updated_at, posted_at, post_attempts`

// Upsert inserts or updates a single item keyed by (kind, natural_key).
// The statement is atomic; concurrent upserts of the same key converge
// on one row. Publish state columns are deliberately absent from the
// update list.
func (r *SQLItemRepository) Upsert(kind Kind, naturalKey string, activityDate time.Time, payload Payload) (*Item, bool, error) {
	if !kind.Valid() {
		return nil, false, fmt.Errorf("invalid item kind: %q", kind)
	}
	if naturalKey == "" {
		return nil, false, fmt.Errorf("natural key is required")
	}

	newID := uuid.NewString()
	now := time.Now().UTC()

	row := r.db.QueryRow(`
		INSERT INTO items (
			id, kind, natural_key, activity_date, title, summary,
			result, sponsor, url, raw_data, fetched_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, natural_key) DO UPDATE SET
			activity_date = excluded.activity_date,
			title = excluded.title,
			summary = excluded.summary,
			result = excluded.result,
			sponsor = excluded.sponsor,
			url = excluded.url,
			raw_data = excluded.raw_data,
			updated_at = excluded.updated_at
		RETURNING `+itemColumns,
		newID, string(kind), naturalKey, activityDate.Format(DateLayout),
		payload.Title, payload.Summary, payload.Result, payload.Sponsor,
		payload.URL, payload.RawData, now, now)

	item, err := scanItem(row)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert item: %w", err)
	}

	// The stored id survives conflicts, so a fresh id means this call
	// created the row.
	created := item.ID == newID
	return item, created, nil
}

// SelectUnposted returns publish candidates in deterministic batch
// order: kind priority, then activity date, then natural key.
func (r *SQLItemRepository) SelectUnposted(filter UnpostedFilter) ([]Item, error) {
	var conditions []string
	var args []interface{}

	conditions = append(conditions, "posted_at IS NULL")

	if filter.MaxAttempts > 0 {
		conditions = append(conditions, "post_attempts < ?")
		args = append(args, filter.MaxAttempts)
	}
	if filter.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.ActivityDate != nil {
		conditions = append(conditions, "activity_date = ?")
		args = append(args, filter.ActivityDate.Format(DateLayout))
	}

	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY
			CASE kind WHEN 'vote' THEN 0 WHEN 'bill' THEN 1 WHEN 'speech' THEN 2 ELSE 3 END,
			activity_date ASC,
			natural_key ASC`

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select unposted items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// MarkPosted transitions the item to posted at most once. The WHERE
// clause is the optimistic precondition: a concurrent scheduler that
// lost the race sees zero affected rows, not an error.
func (r *SQLItemRepository) MarkPosted(itemID string) (bool, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE items
		SET posted_at = ?, updated_at = ?
		WHERE id = ? AND posted_at IS NULL
	`, now, now, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to mark item posted: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

// RecordAttempt increments the publish attempt counter. The counter
// only ever grows; it is never reset.
func (r *SQLItemRepository) RecordAttempt(itemID string) error {
	result, err := r.db.Exec(`
		UPDATE items
		SET post_attempts = post_attempts + 1, updated_at = ?
		WHERE id = ?
	`, time.Now().UTC(), itemID)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item not found: %s", itemID)
	}

	return nil
}

// SetAISummary stores an enrichment summary for the item.
func (r *SQLItemRepository) SetAISummary(itemID, summary string) error {
	result, err := r.db.Exec(`
		UPDATE items
		SET ai_summary = ?, updated_at = ?
		WHERE id = ?
	`, summary, time.Now().UTC(), itemID)
	if err != nil {
		return fmt.Errorf("failed to set summary: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item not found: %s", itemID)
	}

	return nil
}

// SelectMissingSummary returns unposted items for the activity date
// that still lack an AI summary, in the same deterministic order as
// SelectUnposted.
func (r *SQLItemRepository) SelectMissingSummary(activityDate time.Time, limit int) ([]Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE posted_at IS NULL
		  AND ai_summary = ''
		  AND activity_date = ?
		ORDER BY
			CASE kind WHEN 'vote' THEN 0 WHEN 'bill' THEN 1 WHEN 'speech' THEN 2 ELSE 3 END,
			activity_date ASC,
			natural_key ASC`

	args := []interface{}{activityDate.Format(DateLayout)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select items missing summary: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Stats returns item counts grouped by kind and publish state.
func (r *SQLItemRepository) Stats() (*Stats, error) {
	rows, err := r.db.Query(`
		SELECT kind,
		       SUM(CASE WHEN posted_at IS NOT NULL THEN 1 ELSE 0 END) AS posted,
		       SUM(CASE WHEN posted_at IS NULL THEN 1 ELSE 0 END) AS unposted
		FROM items
		GROUP BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get item stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByKind: make(map[Kind]KindStats)}
	for rows.Next() {
		var kind string
		var ks KindStats
		if err := rows.Scan(&kind, &ks.Posted, &ks.Unposted); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.ByKind[Kind(kind)] = ks
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var kind, activityDate string
	var postedAt sql.NullTime

	err := row.Scan(
		&item.ID, &kind, &item.NaturalKey, &activityDate,
		&item.Title, &item.Summary, &item.AISummary,
		&item.Result, &item.Sponsor, &item.URL, &item.RawData,
		&item.FetchedAt, &item.UpdatedAt, &postedAt, &item.PostAttempts,
	)
	if err != nil {
		return nil, err
	}

	item.Kind = Kind(kind)
	item.ActivityDate, err = time.Parse(DateLayout, activityDate)
	if err != nil {
		return nil, fmt.Errorf("invalid activity date %q: %w", activityDate, err)
	}
	if postedAt.Valid {
		t := postedAt.Time
		item.PostedAt = &t
	}

	return &item, nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}
