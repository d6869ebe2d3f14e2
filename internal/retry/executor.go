// Package retry wraps datastore calls with bounded retries and runs batch
// operations in fixed-size concurrent chunks.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/observability"
)

// Executor retries transient store failures up to a fixed attempt budget.
// Validation, not-found, and consistency errors are never retried. The
// executor changes resilience only, never semantics.
type Executor struct {
	attempts  int
	baseDelay time.Duration
	log       zerolog.Logger
}

// NewExecutor constructs an Executor. Non-positive arguments fall back to
// three attempts with a 100ms base delay.
func NewExecutor(attempts int, baseDelay time.Duration, log zerolog.Logger) *Executor {
	if attempts <= 0 {
		attempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	return &Executor{attempts: attempts, baseDelay: baseDelay, log: log}
}

// Do runs fn, retrying transient failures with exponential backoff until the
// attempt budget is exhausted. The op name labels logs and metrics.
func (e *Executor) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.baseDelay

	attempt := 0
	err := backoff.Retry(func() error {
		callErr := fn(ctx)
		if callErr == nil {
			return nil
		}
		switch domain.KindOf(callErr) {
		case domain.KindValidation, domain.KindNotFound, domain.KindConsistency:
			return backoff.Permanent(callErr)
		}
		attempt++
		e.log.Warn().Str("op", op).Int("attempt", attempt).Err(callErr).Msg("store call failed, retrying")
		return callErr
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(e.attempts-1)), ctx))

	if err != nil && domain.KindOf(err) == domain.KindTransient {
		observability.RecordRetryExhausted(op)
	}
	return err
}

// InBatches runs fn for every index in [0, total), size calls at a time, and
// awaits each batch before launching the next. This bounds concurrent load on
// the datastore during bulk reschedules and recalculations.
func InBatches(ctx context.Context, total, size int, fn func(ctx context.Context, index int) error) error {
	if size <= 0 {
		size = 1
	}
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		group, groupCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			group.Go(func() error { return fn(groupCtx, i) })
		}
		if err := group.Wait(); err != nil {
			return err
		}
	}
	return nil
}
