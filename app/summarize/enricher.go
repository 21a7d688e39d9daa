package summarize

import (
	"context"
	"log/slog"
	"time"

	"congresswire/app/database"
	"congresswire/app/retry"
)

// Report summarizes one enrichment pass.
type Report struct {
	Summarized int
	Failed     int
}

// Enricher fills the AI summary of stored items that are still missing
// one. Enrichment is an optional pass: it never touches publish state
// and a failing item is logged and skipped.
type Enricher struct {
	repo       database.ItemRepository
	summarizer Summarizer
	policy     retry.Policy
	batchSize  int
}

// NewEnricher creates a new summary enricher
func NewEnricher(repo database.ItemRepository, summarizer Summarizer, policy retry.Policy, batchSize int) *Enricher {
	return &Enricher{
		repo:       repo,
		summarizer: summarizer,
		policy:     policy,
		batchSize:  batchSize,
	}
}

// Run summarizes the unposted items of the target date that have no AI
// summary yet.
func (e *Enricher) Run(ctx context.Context, targetDate time.Time) (Report, error) {
	var report Report

	items, err := e.repo.SelectMissingSummary(targetDate, e.batchSize)
	if err != nil {
		return report, err
	}

	for _, item := range items {
		summary, err := e.summarizeOne(ctx, item)
		if err != nil {
			report.Failed++
			slog.Warn("Failed to summarize item",
				"kind", string(item.Kind),
				"natural_key", item.NaturalKey,
				"error", err)
			continue
		}
		if summary == "" {
			continue
		}

		if err := e.repo.SetAISummary(item.ID, summary); err != nil {
			report.Failed++
			slog.Error("Failed to store summary", "item", item.NaturalKey, "error", err)
			continue
		}
		report.Summarized++
	}

	slog.Info("Summarization completed",
		"date", targetDate.Format(database.DateLayout),
		"summarized", report.Summarized,
		"failed", report.Failed)

	return report, nil
}

func (e *Enricher) summarizeOne(ctx context.Context, item database.Item) (string, error) {
	var summary string
	err := e.policy.Execute(ctx, func() error {
		var err error
		summary, err = e.summarizer.Summarize(ctx, item)
		return err
	})
	return summary, err
}
