package database

import (
	"time"
)

// UnpostedFilter restricts SelectUnposted. MaxAttempts excludes poison
// items (attempts at or above the threshold); Kind and ActivityDate are
// optional restrictions; Limit bounds the batch.
type UnpostedFilter struct {
	Kind         *Kind
	ActivityDate *time.Time
	MaxAttempts  int
	Limit        int
}

// ItemRepository is the Item Store contract. It exclusively owns all
// mutation of publish state; callers coordinate solely through these
// per-row conditional transitions.
type ItemRepository interface {
	// Upsert atomically inserts or updates the item identified by
	// (kind, naturalKey). Updates rewrite payload and activity date
	// only; fetched_at, ai_summary, posted_at and post_attempts are
	// never touched. Returns the stored item and whether it was created.
	Upsert(kind Kind, naturalKey string, activityDate time.Time, payload Payload) (*Item, bool, error)

	// SelectUnposted returns unposted items matching the filter, ordered
	// by kind priority, then activity date ascending, then natural key
	// ascending. Read-only; rows are not reserved.
	SelectUnposted(filter UnpostedFilter) ([]Item, error)

	// MarkPosted sets posted_at if and only if it is still null.
	// Returns false (without error) when the item was already posted.
	MarkPosted(itemID string) (bool, error)

	// RecordAttempt increments the item's publish attempt counter.
	RecordAttempt(itemID string) error

	// SetAISummary stores an enrichment summary without touching
	// identity or publish state.
	SetAISummary(itemID, summary string) error

	// SelectMissingSummary returns unposted items for the given activity
	// date that have no AI summary yet.
	SelectMissingSummary(activityDate time.Time, limit int) ([]Item, error)

	// Stats returns item counts by kind and publish state.
	Stats() (*Stats, error)
}
