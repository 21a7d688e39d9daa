package fetch

import (
	"context"
	"time"

	"congresswire/app/database"
)

// Record is one normalized unit of upstream activity, ready to upsert.
type Record struct {
	NaturalKey   string
	ActivityDate time.Time
	Payload      database.Payload
}

// Source lists upstream legislative activity for one kind and date.
// Implementations classify their failures with the retry package so the
// coordinator's policy can tell transient from permanent.
type Source interface {
	ListActivity(ctx context.Context, kind database.Kind, date time.Time) ([]Record, error)
}
