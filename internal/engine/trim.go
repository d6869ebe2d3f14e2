package engine

import (
	"math"
	"sort"

	"example.com/routine/internal/domain"
)

// ConcernPriority ranks a concern for trimming. Lower Priority values are
// sacrificed first: when a schedule exceeds its occurrence budget, days over
// the per-day average lose occurrences of the lowest-priority concern before
// any higher-priority concern is touched.
type ConcernPriority struct {
	Concern  string
	Priority int
}

// TrimSchedule removes up to toDelete occurrences from days holding more than
// the per-day average, walking concerns from lowest to highest priority and
// removing from the end of each day's list. Days at or under the average are
// never touched. A day drained to zero entries loses its key entirely.
// Returns the number of occurrences actually removed.
func TrimSchedule(schedule domain.Schedule, days int, priorities []ConcernPriority, toDelete, maxTasksPerSchedule int) int {
	if days <= 0 || toDelete <= 0 {
		return 0
	}

	average := int(math.Round(float64(maxTasksPerSchedule) / float64(days)))

	ranked := make([]ConcernPriority, len(priorities))
	copy(ranked, priorities)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Priority < ranked[j].Priority })

	removed := 0
	for _, rank := range ranked {
		if toDelete == 0 {
			break
		}
		for _, day := range schedule.Days() {
			entries := schedule[day]
			for len(entries) > average && toDelete > 0 {
				idx := lastIndexOfConcern(entries, rank.Concern)
				if idx < 0 {
					break
				}
				entries = append(entries[:idx], entries[idx+1:]...)
				toDelete--
				removed++
			}
			if len(entries) == 0 {
				delete(schedule, day)
			} else {
				schedule[day] = entries
			}
		}
	}
	return removed
}

func lastIndexOfConcern(entries []domain.ScheduleEntry, concern string) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Concern == concern {
			return i
		}
	}
	return -1
}
