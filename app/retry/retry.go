package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy governs how transient failures are retried: exponential backoff
// starting at BaseDelay, doubling per attempt, capped at MaxDelay, up to
// MaxAttempts total attempts. Permanent failures abort immediately without
// consuming the remaining budget.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewPolicy returns a policy with a 30s delay cap, enough to ride out
// upstream rate limiting without stalling a run.
func NewPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    30 * time.Second,
	}
}

// Execute runs op, retrying transient failures per the policy. The
// returned error is the operation's final error; if the attempt budget
// was exhausted on a transient failure it is wrapped as KindExhausted so
// the caller can tell "gave up" from "rejected" only through the kind.
func (p Policy) Execute(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.MaxInterval = p.MaxDelay
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0

	maxRetries := uint64(0)
	if p.MaxAttempts > 1 {
		maxRetries = uint64(p.MaxAttempts - 1)
	}

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx))
	if err == nil {
		return nil
	}
	if IsPermanent(err) {
		return err
	}
	return &Error{Kind: KindExhausted, Err: err}
}
