package engine

import (
	"context"
	"sort"
	"time"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/observability"
	"example.com/routine/internal/retry"
)

// RecalculateAggregates recomputes, in place, every activity's total from its
// non-deleted occurrence refs and the routine's startsAt/lastDate bounds from
// the min/max start over all non-deleted refs. Pure and idempotent: applying
// it twice yields the same result as once. Bounds are left untouched when no
// live occurrence remains.
func RecalculateAggregates(routine *domain.Routine) {
	var minStart, maxStart time.Time

	for i := range routine.AllTasks {
		agg := &routine.AllTasks[i]
		total := 0
		for _, ref := range agg.IDs {
			if ref.Deleted() {
				continue
			}
			total++
			if minStart.IsZero() || ref.StartsAt.Before(minStart) {
				minStart = ref.StartsAt
			}
			if maxStart.IsZero() || ref.StartsAt.After(maxStart) {
				maxStart = ref.StartsAt
			}
		}
		agg.Total = total
	}

	if !minStart.IsZero() {
		routine.StartsAt = minStart
		routine.LastDate = maxStart
	}
}

// RebuildOccurrenceRefs replaces every aggregate's occurrence refs with the
// projection of the given tasks, the task collection being the source of
// truth. Tasks whose key has no aggregate record are returned as dangling so
// the caller can log the consistency violation; the rebuild itself proceeds
// best-effort.
func RebuildOccurrenceRefs(routine *domain.Routine, tasks []domain.Task) (dangling []string) {
	byKey := make(map[string][]domain.OccurrenceRef, len(routine.AllTasks))
	known := make(map[string]bool, len(routine.AllTasks))
	for _, agg := range routine.AllTasks {
		known[agg.Key] = true
	}

	for _, task := range tasks {
		if !known[task.Key] {
			dangling = append(dangling, task.ID)
			continue
		}
		byKey[task.Key] = append(byKey[task.Key], domain.OccurrenceRef{
			ID:        task.ID,
			StartsAt:  task.StartsAt,
			Status:    task.Status,
			DeletedOn: task.DeletedOn,
		})
	}

	for i := range routine.AllTasks {
		agg := &routine.AllTasks[i]
		refs := byKey[agg.Key]
		sort.Slice(refs, func(a, b int) bool { return refs[a].StartsAt.Before(refs[b].StartsAt) })
		agg.IDs = refs
	}
	return dangling
}

// Recalculate rebuilds the aggregate projection of each routine from its
// persisted task occurrences, BatchSize routines at a time. Invoked after
// any operation that deletes individual occurrences without going through
// the rescheduler.
func (e *Engine) Recalculate(ctx context.Context, routineIDs ...string) error {
	return retry.InBatches(ctx, len(routineIDs), e.cfg.BatchSize, func(ctx context.Context, i int) error {
		return e.recalculateOne(ctx, routineIDs[i])
	})
}

func (e *Engine) recalculateOne(ctx context.Context, routineID string) error {
	const op = "engine.Recalculate"

	var routine *domain.Routine
	if err := e.exec.Do(ctx, op+".get", func(ctx context.Context) error {
		found, err := e.stores.Routines.Get(ctx, routineID)
		if err != nil {
			return err
		}
		routine = found
		return nil
	}); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			e.log.Warn().Str("routine_id", routineID).Msg("recalculation requested for missing routine")
			return nil
		}
		return err
	}

	var tasks []domain.Task
	if err := e.exec.Do(ctx, op+".tasks", func(ctx context.Context) error {
		found, err := e.stores.Tasks.ListByRoutine(ctx, routineID)
		if err != nil {
			return err
		}
		tasks = found
		return nil
	}); err != nil {
		return err
	}

	if dangling := RebuildOccurrenceRefs(routine, tasks); len(dangling) > 0 {
		e.log.Warn().
			Str("routine_id", routineID).
			Strs("task_ids", dangling).
			Msg("tasks reference no aggregate record, continuing best-effort")
	}
	RecalculateAggregates(routine)

	if err := e.exec.Do(ctx, op+".update", func(ctx context.Context) error {
		return e.stores.Routines.UpdateAggregates(ctx, routine)
	}); err != nil {
		return err
	}

	observability.RecordRecalculation()
	e.record(ctx, EventRoutineRecalculated, routineID, RoutineRecalculatedEvent{
		RoutineID:  routineID,
		StartsAt:   routine.StartsAt,
		LastDate:   routine.LastDate,
		OccurredAt: e.now().UTC(),
	})
	return nil
}

// DeleteOccurrence soft-deletes one task occurrence and re-derives the
// owning routine's aggregates from the surviving occurrences.
func (e *Engine) DeleteOccurrence(ctx context.Context, routineID, taskID string) error {
	const op = "engine.DeleteOccurrence"

	if routineID == "" || taskID == "" {
		return domain.Validationf(op, "routine id and task id are required")
	}

	if err := e.exec.Do(ctx, op, func(ctx context.Context) error {
		return e.stores.Tasks.SoftDelete(ctx, routineID, taskID, e.now().UTC())
	}); err != nil {
		return err
	}

	return e.Recalculate(ctx, routineID)
}
