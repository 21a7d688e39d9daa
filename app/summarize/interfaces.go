package summarize

import (
	"context"

	"congresswire/app/database"
)

// Summarizer produces a short plain-language summary of one item.
type Summarizer interface {
	Summarize(ctx context.Context, item database.Item) (string, error)
}
