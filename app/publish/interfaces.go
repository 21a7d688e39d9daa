package publish

import (
	"context"

	"congresswire/app/database"
)

// Post is one rendered social-feed entry.
type Post struct {
	ItemID string
	Kind   database.Kind
	Text   string
}

// Sink delivers a rendered post to the social feed. Implementations
// classify their failures with the retry package; a nil return means
// the post is confirmed delivered.
type Sink interface {
	Publish(ctx context.Context, post Post) error
}
