package engine

import (
	"time"

	"github.com/google/uuid"

	"example.com/routine/internal/domain"
)

// MaterializeSchedule turns a finalized schedule into persisted task
// occurrences with generated ids, plus the per-activity aggregate records
// that project them. Schedule entries gain their occurrence id in place.
// Each occurrence starts at UTC midnight of its schedule day and expires
// after the given window.
func MaterializeSchedule(schedule domain.Schedule, allocations []domain.Allocation, routineID, userID, part string, expiry time.Duration) ([]domain.Task, []domain.TaskAggregate, error) {
	const op = "engine.MaterializeSchedule"

	allocByKey := make(map[string]domain.Allocation, len(allocations))
	for _, alloc := range allocations {
		allocByKey[alloc.Key] = alloc
	}

	tasks := make([]domain.Task, 0, schedule.Count())
	refsByKey := make(map[string][]domain.OccurrenceRef)

	for _, day := range schedule.Days() {
		startsAt, err := time.ParseInLocation(domain.DayFormat, day, time.UTC)
		if err != nil {
			return nil, nil, domain.Validationf(op, "malformed schedule day %q", day)
		}

		entries := schedule[day]
		for i := range entries {
			entry := &entries[i]
			if _, ok := allocByKey[entry.Key]; !ok {
				return nil, nil, domain.Validationf(op, "schedule entry %q has no allocation", entry.Key)
			}

			entry.OccurrenceID = uuid.NewString()
			tasks = append(tasks, domain.Task{
				ID:        entry.OccurrenceID,
				UserID:    userID,
				Key:       entry.Key,
				Concern:   entry.Concern,
				Part:      part,
				RoutineID: routineID,
				StartsAt:  startsAt,
				ExpiresAt: startsAt.Add(expiry),
				Status:    domain.TaskStatusActive,
			})
			refsByKey[entry.Key] = append(refsByKey[entry.Key], domain.OccurrenceRef{
				ID:       entry.OccurrenceID,
				StartsAt: startsAt,
				Status:   domain.TaskStatusActive,
			})
		}
	}

	aggregates := make([]domain.TaskAggregate, 0, len(allocations))
	for _, alloc := range allocations {
		refs := refsByKey[alloc.Key]
		if len(refs) == 0 {
			// Activity was infeasible or fully trimmed; no aggregate record.
			continue
		}
		aggregates = append(aggregates, domain.TaskAggregate{
			Key:     alloc.Key,
			Name:    alloc.Name,
			Icon:    alloc.Icon,
			Color:   alloc.Color,
			Concern: alloc.Concern,
			Total:   len(refs),
			IDs:     refs,
		})
	}

	return tasks, aggregates, nil
}
