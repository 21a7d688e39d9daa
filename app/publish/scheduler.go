package publish

import (
	"context"
	"log/slog"
	"time"

	"congresswire/app/database"
	"congresswire/app/retry"
)

// Report summarizes one publish batch. Skipped counts items another
// scheduler posted first (the conditional transition lost the race);
// Rendered carries the dry-run output.
type Report struct {
	Posted   int
	Skipped  int
	Failed   int
	DryRun   bool
	Rendered []Post
}

// AllFailed reports whether the batch attempted items and none posted.
func (r Report) AllFailed() bool {
	return r.Failed > 0 && r.Posted == 0 && r.Skipped == 0
}

// Scheduler selects the next batch of unposted items and publishes them
// through the sink, committing each item's state transition only on
// confirmed success. Batches are independent: all coordination lives in
// the persisted posted_at/post_attempts columns.
type Scheduler struct {
	repo        database.ItemRepository
	sink        Sink
	renderer    *Renderer
	policy      retry.Policy
	maxAttempts int
}

// NewScheduler creates a new publish scheduler. maxAttempts is the
// poison-item threshold: items at or above it are left for an operator.
func NewScheduler(repo database.ItemRepository, sink Sink, policy retry.Policy, maxAttempts int) *Scheduler {
	return &Scheduler{
		repo:        repo,
		sink:        sink,
		renderer:    NewRenderer(),
		policy:      policy,
		maxAttempts: maxAttempts,
	}
}

// RunBatch publishes up to maxItems unposted items, oldest first within
// kind priority. With dryRun set it renders the batch without calling
// the sink or mutating any state. A failing item never blocks the rest
// of the batch.
func (s *Scheduler) RunBatch(ctx context.Context, maxItems int, targetDate *time.Time, dryRun bool) (Report, error) {
	report := Report{DryRun: dryRun}

	items, err := s.repo.SelectUnposted(database.UnpostedFilter{
		ActivityDate: targetDate,
		MaxAttempts:  s.maxAttempts,
		Limit:        maxItems,
	})
	if err != nil {
		return report, err
	}

	for _, item := range items {
		post := Post{
			ItemID: item.ID,
			Kind:   item.Kind,
			Text:   s.renderer.Run(item),
		}

		if dryRun {
			report.Rendered = append(report.Rendered, post)
			continue
		}

		s.publishOne(ctx, item, post, &report)
	}

	if !dryRun {
		slog.Info("Publish batch completed",
			"selected", len(items),
			"posted", report.Posted,
			"skipped", report.Skipped,
			"failed", report.Failed)
	}

	return report, nil
}

func (s *Scheduler) publishOne(ctx context.Context, item database.Item, post Post, report *Report) {
	err := s.policy.Execute(ctx, func() error {
		return s.sink.Publish(ctx, post)
	})
	if err != nil {
		// Failed delivery still consumes an attempt so a permanently
		// broken item eventually trips the poison guard.
		if attemptErr := s.repo.RecordAttempt(item.ID); attemptErr != nil {
			slog.Error("Failed to record attempt", "item", item.NaturalKey, "error", attemptErr)
		}
		report.Failed++
		slog.Warn("Failed to publish item",
			"kind", string(item.Kind),
			"natural_key", item.NaturalKey,
			"attempts", item.PostAttempts+1,
			"failure", retry.KindOf(err).String(),
			"error", err)
		return
	}

	marked, err := s.repo.MarkPosted(item.ID)
	if err != nil {
		report.Failed++
		slog.Error("Failed to mark item posted", "item", item.NaturalKey, "error", err)
		return
	}

	if attemptErr := s.repo.RecordAttempt(item.ID); attemptErr != nil {
		slog.Error("Failed to record attempt", "item", item.NaturalKey, "error", attemptErr)
	}

	if !marked {
		// Another batch confirmed this item first; the duplicate post is
		// the tolerated crash-window case, never a dropped item.
		report.Skipped++
		slog.Warn("Item already posted by another run", "kind", string(item.Kind), "natural_key", item.NaturalKey)
		return
	}

	report.Posted++
	slog.Info("Published item", "kind", string(item.Kind), "natural_key", item.NaturalKey)
}
