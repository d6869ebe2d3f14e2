package engine

import (
	"context"
	"time"

	"example.com/routine/internal/domain"
)

// ExtendRoutine appends a newly planned window of occurrences to an existing
// routine: the allocations are spread over [start, end], materialized into
// task occurrences, and merged into the routine's per-activity aggregates.
// Activities the routine already tracks have their counters summed and refs
// concatenated; new activities are appended. Tasks are inserted before the
// aggregate projection is rewritten, so a transient failure in between leaves
// a state the recalculator converges, not a lost occurrence.
func (e *Engine) ExtendRoutine(ctx context.Context, routineID string, allocations []domain.Allocation, start, end time.Time, earliestByKey map[string]time.Time, priorities []ConcernPriority) error {
	const op = "engine.ExtendRoutine"

	if routineID == "" {
		return domain.Validationf(op, "routine id is required")
	}
	if len(allocations) == 0 {
		return domain.Validationf(op, "at least one allocation is required")
	}

	var routine *domain.Routine
	if err := e.exec.Do(ctx, op+".get", func(ctx context.Context) error {
		found, err := e.stores.Routines.Get(ctx, routineID)
		if err != nil {
			return err
		}
		routine = found
		return nil
	}); err != nil {
		return err
	}

	schedule, err := e.PlanSchedule(allocations, start, end, earliestByKey, priorities)
	if err != nil {
		return err
	}
	if schedule.Count() == 0 {
		return domain.Validationf(op, "window yields no feasible occurrences")
	}

	tasks, aggregates, err := MaterializeSchedule(schedule, allocations, routineID, routine.UserID, routine.Part, e.cfg.TaskExpiry)
	if err != nil {
		return err
	}

	routine.AllTasks = MergeTaskAggregates(routine.AllTasks, aggregates)
	RecalculateAggregates(routine)

	if err := e.exec.Do(ctx, op+".insert", func(ctx context.Context) error {
		return e.stores.Tasks.InsertMany(ctx, tasks)
	}); err != nil {
		return err
	}

	if err := e.exec.Do(ctx, op+".update", func(ctx context.Context) error {
		return e.stores.Routines.UpdateAggregates(ctx, routine)
	}); err != nil {
		return err
	}

	e.log.Info().
		Str("routine_id", routineID).
		Int("tasks_added", len(tasks)).
		Time("last_date", routine.LastDate).
		Msg("routine extended")

	e.record(ctx, EventRoutineExtended, routineID, RoutineExtendedEvent{
		RoutineID:  routineID,
		TasksAdded: len(tasks),
		StartsAt:   routine.StartsAt,
		LastDate:   routine.LastDate,
		OccurredAt: e.now().UTC(),
	})
	return nil
}
