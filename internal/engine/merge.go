package engine

import "example.com/routine/internal/domain"

// MergeTaskAggregates deep-merges two per-activity aggregate collections,
// used when a routine is extended or replaced. Keys present in both inputs
// merge into one record: numeric fields sum, occurrence refs concatenate,
// and scalar fields from the newer record win. Keys present in only one
// input pass through unchanged. Output order is previous-list order followed
// by keys new in the newer list.
func MergeTaskAggregates(previous, newer []domain.TaskAggregate) []domain.TaskAggregate {
	merged := make([]domain.TaskAggregate, 0, len(previous)+len(newer))
	index := make(map[string]int, len(previous))

	for _, agg := range previous {
		agg.IDs = append([]domain.OccurrenceRef(nil), agg.IDs...)
		index[agg.Key] = len(merged)
		merged = append(merged, agg)
	}

	for _, agg := range newer {
		i, ok := index[agg.Key]
		if !ok {
			agg.IDs = append([]domain.OccurrenceRef(nil), agg.IDs...)
			index[agg.Key] = len(merged)
			merged = append(merged, agg)
			continue
		}

		existing := &merged[i]
		existing.Name = agg.Name
		existing.Icon = agg.Icon
		existing.Color = agg.Color
		existing.Concern = agg.Concern
		existing.Total += agg.Total
		existing.Completed += agg.Completed
		existing.Unknown += agg.Unknown
		existing.IDs = append(existing.IDs, agg.IDs...)
	}

	return merged
}
