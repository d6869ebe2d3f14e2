package engine

import (
	"time"

	"github.com/rs/zerolog"

	"example.com/routine/internal/domain"
)

// BuildSchedule fans SpreadDates out over every allocation and groups the
// resulting occurrences by UTC calendar day. Activities that cannot fit the
// window are skipped with a warning; they never fail the batch.
func BuildSchedule(log zerolog.Logger, allocations []domain.Allocation, start, end time.Time, earliestByKey map[string]time.Time) (domain.Schedule, error) {
	schedule := make(domain.Schedule)

	for _, alloc := range allocations {
		dates, err := SpreadDates(alloc.Key, start, end, alloc.Total, earliestByKey)
		if err != nil {
			return nil, err
		}
		if dates == nil {
			log.Warn().
				Str("key", alloc.Key).
				Str("concern", alloc.Concern).
				Time("window_end", end).
				Msg("activity start clamped past window end, skipping")
			continue
		}

		for _, date := range dates {
			day := domain.DayKey(date)
			schedule[day] = append(schedule[day], domain.ScheduleEntry{
				Key:     alloc.Key,
				Concern: alloc.Concern,
			})
		}
	}

	return schedule, nil
}

// ScheduleFromTasks re-derives a schedule from persisted occurrences,
// ignoring soft-deleted tasks. Used by schedule reads and by extension flows
// that need the current shape of an existing routine.
func ScheduleFromTasks(tasks []domain.Task) domain.Schedule {
	schedule := make(domain.Schedule)
	for _, task := range tasks {
		if task.Status == domain.TaskStatusDeleted || task.DeletedOn != nil {
			continue
		}
		day := domain.DayKey(task.StartsAt)
		schedule[day] = append(schedule[day], domain.ScheduleEntry{
			Key:          task.Key,
			Concern:      task.Concern,
			OccurrenceID: task.ID,
		})
	}
	return schedule
}
