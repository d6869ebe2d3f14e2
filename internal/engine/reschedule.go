package engine

import (
	"context"
	"time"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/observability"
	"example.com/routine/internal/retry"
)

// Reschedule shifts every date belonging to a routine by daysOffset days:
// the aggregate's startsAt, lastDate, and occurrence refs, plus startsAt and
// expiresAt of every persisted task owned by the routine. There is no
// cross-collection transaction; each side runs under the retrying executor
// and the operation only reports success once both have succeeded, so a
// transient failure leaves a retryable half-applied state rather than a
// silently inconsistent one.
func (e *Engine) Reschedule(ctx context.Context, routineID string, daysOffset int) error {
	const op = "engine.Reschedule"

	if routineID == "" {
		return domain.Validationf(op, "routine id is required")
	}
	if daysOffset == 0 {
		return nil
	}

	offset := time.Duration(daysOffset) * 24 * time.Hour
	start := e.now()

	// Task collection first: it is the source of truth, and the aggregate
	// projection can always be rebuilt from it by the recalculator.
	if err := e.exec.Do(ctx, op+".tasks", func(ctx context.Context) error {
		return e.stores.Tasks.ShiftByRoutine(ctx, routineID, offset)
	}); err != nil {
		return err
	}

	if err := e.exec.Do(ctx, op+".routine", func(ctx context.Context) error {
		return e.stores.Routines.ShiftDates(ctx, routineID, offset)
	}); err != nil {
		return err
	}

	observability.ObserveReschedule(time.Since(start))
	e.log.Info().Str("routine_id", routineID).Int("days_offset", daysOffset).Msg("routine rescheduled")

	e.record(ctx, EventRoutineRescheduled, routineID, RoutineRescheduledEvent{
		RoutineID:  routineID,
		DaysOffset: daysOffset,
		OccurredAt: e.now().UTC(),
	})
	return nil
}

// RescheduleMany shifts several routines by the same offset, BatchSize
// routines at a time, awaiting each batch before starting the next.
func (e *Engine) RescheduleMany(ctx context.Context, routineIDs []string, daysOffset int) error {
	return retry.InBatches(ctx, len(routineIDs), e.cfg.BatchSize, func(ctx context.Context, i int) error {
		return e.Reschedule(ctx, routineIDs[i], daysOffset)
	})
}
