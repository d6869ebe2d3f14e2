package engine

import (
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/routine/internal/domain"
)

func TestMaterializeScheduleRoundTrip(t *testing.T) {
	allocations := []domain.Allocation{
		{Key: "sunscreen", Name: "Apply sunscreen", Concern: "sun-damage", Total: 4},
		{Key: "retinol", Name: "Apply retinol", Concern: "wrinkles", Total: 2},
	}

	schedule, err := BuildSchedule(zerolog.Nop(), allocations, date(2024, time.January, 1), date(2024, time.January, 8), nil)
	require.NoError(t, err)

	tasks, aggregates, err := MaterializeSchedule(schedule, allocations, "routine-1", "user-1", domain.PartFace, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, tasks, schedule.Count())

	// Re-deriving the schedule from the materialized occurrences yields the
	// same day->(key, concern) multiset.
	rederived := ScheduleFromTasks(tasks)
	require.ElementsMatch(t, schedule.Days(), rederived.Days())
	for _, day := range schedule.Days() {
		require.ElementsMatch(t, stripIDs(schedule[day]), stripIDs(rederived[day]), "day %s", day)
	}

	// Aggregate totals match the allocations; refs are date-ordered.
	require.Len(t, aggregates, 2)
	for i, alloc := range allocations {
		require.Equal(t, alloc.Key, aggregates[i].Key)
		require.Equal(t, alloc.Total, aggregates[i].Total)
		require.Len(t, aggregates[i].IDs, alloc.Total)
		require.True(t, sort.SliceIsSorted(aggregates[i].IDs, func(a, b int) bool {
			return aggregates[i].IDs[a].StartsAt.Before(aggregates[i].IDs[b].StartsAt)
		}))
	}

	for _, task := range tasks {
		require.Equal(t, "routine-1", task.RoutineID)
		require.Equal(t, domain.PartFace, task.Part)
		require.Equal(t, domain.TaskStatusActive, task.Status)
		require.Equal(t, task.StartsAt.Add(24*time.Hour), task.ExpiresAt)
		require.NotEmpty(t, task.ID)
	}
}

func TestMaterializeScheduleRejectsUnknownEntry(t *testing.T) {
	schedule := domain.Schedule{
		"2024-01-01": {{Key: "mystery", Concern: "none"}},
	}

	_, _, err := MaterializeSchedule(schedule, nil, "routine-1", "user-1", domain.PartFace, 24*time.Hour)
	require.True(t, domain.IsKind(err, domain.KindValidation))
}

func stripIDs(entries []domain.ScheduleEntry) []domain.ScheduleEntry {
	out := make([]domain.ScheduleEntry, len(entries))
	for i, entry := range entries {
		entry.OccurrenceID = ""
		out[i] = entry
	}
	return out
}
