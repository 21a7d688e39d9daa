package database

import (
	"time"
)

// Kind identifies the type of legislative activity an item records.
// It is immutable once an item is created.
type Kind string

const (
	KindVote   Kind = "vote"
	KindBill   Kind = "bill"
	KindSpeech Kind = "speech"
)

// Kinds lists all item kinds in publish-priority order: votes before
// bills before speeches.
var Kinds = []Kind{KindVote, KindBill, KindSpeech}

// Priority returns the publish ordering rank of the kind. Lower ranks
// publish first.
func (k Kind) Priority() int {
	switch k {
	case KindVote:
		return 0
	case KindBill:
		return 1
	case KindSpeech:
		return 2
	}
	return 3
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindVote || k == KindBill || k == KindSpeech
}

// Payload holds the normalized upstream fields needed to render a post.
// It may be rewritten by later fetches; identity and publish state never
// are.
type Payload struct {
	Title   string // display headline, e.g. "HR 2988: Some Act" or vote question
	Summary string // upstream-provided description/summary text
	Result  string // vote result or latest bill action
	Sponsor string // sponsor or speaker name
	URL     string // upstream source URL
	RawData string // upstream JSON snapshot
}

// Item represents one stored unit of legislative activity.
type Item struct {
	ID           string
	Kind         Kind
	NaturalKey   string
	ActivityDate time.Time

	Title     string
	Summary   string
	AISummary string
	Result    string
	Sponsor   string
	URL       string
	RawData   string

	FetchedAt    time.Time
	UpdatedAt    time.Time
	PostedAt     *time.Time
	PostAttempts int
}

// Posted reports whether the item has completed its publish transition.
func (i Item) Posted() bool {
	return i.PostedAt != nil
}

// BestSummary prefers the AI-generated summary over the upstream one.
// Either may be absent; an item publishes fine without both.
func (i Item) BestSummary() string {
	if i.AISummary != "" {
		return i.AISummary
	}
	return i.Summary
}

// KindStats holds posted/unposted counts for a single kind.
type KindStats struct {
	Posted   int
	Unposted int
}

// Stats aggregates item counts by kind and publish state.
type Stats struct {
	ByKind map[Kind]KindStats
}

// Total returns the overall item count.
func (s Stats) Total() int {
	total := 0
	for _, ks := range s.ByKind {
		total += ks.Posted + ks.Unposted
	}
	return total
}

// Unposted returns the overall count of items still eligible for
// publishing.
func (s Stats) Unposted() int {
	total := 0
	for _, ks := range s.ByKind {
		total += ks.Unposted
	}
	return total
}
