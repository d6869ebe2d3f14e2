package engine

import (
	"time"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/observability"
)

// PlanSchedule assembles a schedule for the given allocations and trims it
// back to the configured occurrence budget when the allocations oversubscribe
// the window. This is the entry point the routine-building flow calls after
// upstream selection has chosen activities and frequencies.
func (e *Engine) PlanSchedule(allocations []domain.Allocation, start, end time.Time, earliestByKey map[string]time.Time, priorities []ConcernPriority) (domain.Schedule, error) {
	const op = "engine.PlanSchedule"

	if start.IsZero() || end.IsZero() {
		return nil, domain.Validationf(op, "start and end dates are required")
	}
	if end.Before(start) {
		return nil, domain.Validationf(op, "window end precedes start")
	}

	schedule, err := BuildSchedule(e.log, allocations, start, end, earliestByKey)
	if err != nil {
		return nil, err
	}
	observability.RecordScheduleBuilt()

	if over := schedule.Count() - e.cfg.MaxTasksPerSchedule; over > 0 {
		days := windowDays(start, end)
		removed := TrimSchedule(schedule, days, priorities, over, e.cfg.MaxTasksPerSchedule)
		observability.RecordOccurrencesTrimmed(removed)
		e.log.Info().
			Int("over_budget", over).
			Int("removed", removed).
			Int("days", days).
			Msg("schedule trimmed to occurrence budget")
	}

	return schedule, nil
}

// windowDays is the inclusive calendar-day width of the scheduling window.
func windowDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
