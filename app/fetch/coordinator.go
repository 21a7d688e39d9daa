package fetch

import (
	"context"
	"log/slog"
	"time"

	"congresswire/app/database"
	"congresswire/app/retry"
)

// Report summarizes one fetch run. Failed lists the kinds whose
// upstream listing still failed after retries; those kinds simply
// contributed zero items this run.
type Report struct {
	Created int
	Updated int
	Failed  []database.Kind
}

// AllFailed reports whether every kind failed and nothing was stored.
func (r Report) AllFailed() bool {
	return len(r.Failed) > 0 && r.Created == 0 && r.Updated == 0 &&
		len(r.Failed) == len(database.Kinds)
}

// Coordinator pulls candidate items from the upstream source for a
// target date and upserts them into the item store. Running it twice
// for the same date converges on identical stored state.
type Coordinator struct {
	source Source
	repo   database.ItemRepository
	policy retry.Policy
}

// NewCoordinator creates a new fetch coordinator
func NewCoordinator(source Source, repo database.ItemRepository, policy retry.Policy) *Coordinator {
	return &Coordinator{
		source: source,
		repo:   repo,
		policy: policy,
	}
}

// Run fetches activity for all kinds on the target date. Failures are
// isolated per kind: a kind that fails after retries is recorded in the
// report and the remaining kinds still run. Run itself never returns an
// error for upstream failures.
func (c *Coordinator) Run(ctx context.Context, targetDate time.Time) Report {
	var report Report

	for _, kind := range database.Kinds {
		start := time.Now()

		var records []Record
		err := c.policy.Execute(ctx, func() error {
			listed, listErr := c.source.ListActivity(ctx, kind, targetDate)
			if listErr != nil {
				return listErr
			}
			records = listed
			return nil
		})
		if err != nil {
			slog.Error("Upstream listing failed",
				"kind", string(kind),
				"date", targetDate.Format(database.DateLayout),
				"failure", retry.KindOf(err).String(),
				"error", err)
			report.Failed = append(report.Failed, kind)
			continue
		}

		created, updated := c.storeRecords(kind, records)
		report.Created += created
		report.Updated += updated

		slog.Info("Fetched kind",
			"kind", string(kind),
			"date", targetDate.Format(database.DateLayout),
			"total", len(records),
			"created", created,
			"updated", updated,
			"duration", time.Since(start).String())
	}

	return report
}

// storeRecords upserts records one at a time. Duplicate upstream
// records collapse onto one row via the natural key; a bad record is
// logged and skipped without aborting the rest.
func (c *Coordinator) storeRecords(kind database.Kind, records []Record) (created, updated int) {
	seen := make(map[string]bool, len(records))

	for _, record := range records {
		if record.NaturalKey == "" {
			slog.Warn("Skipping record without natural key", "kind", string(kind))
			continue
		}

		duplicate := seen[record.NaturalKey]
		seen[record.NaturalKey] = true

		_, wasCreated, err := c.repo.Upsert(kind, record.NaturalKey, record.ActivityDate, record.Payload)
		if err != nil {
			slog.Warn("Failed to store record",
				"kind", string(kind),
				"natural_key", record.NaturalKey,
				"error", err)
			continue
		}

		// A key repeated inside one listing is an upstream duplicate,
		// not a correction; count it once.
		if duplicate {
			continue
		}
		if wasCreated {
			created++
		} else {
			updated++
		}
	}

	return created, updated
}
