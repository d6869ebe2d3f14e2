package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/routine/internal/domain"
)

func TestMergeDisjointKeys(t *testing.T) {
	previous := []domain.TaskAggregate{
		{Key: "sunscreen", Name: "Apply sunscreen", Total: 4},
	}
	newer := []domain.TaskAggregate{
		{Key: "retinol", Name: "Apply retinol", Total: 2},
		{Key: "cleanser", Name: "Cleanse", Total: 6},
	}

	merged := MergeTaskAggregates(previous, newer)

	require.Len(t, merged, 3)
	require.Equal(t, "sunscreen", merged[0].Key)
	require.Equal(t, "retinol", merged[1].Key)
	require.Equal(t, "cleanser", merged[2].Key)
}

func TestMergeOverlappingKeySumsAndConcatenates(t *testing.T) {
	previous := []domain.TaskAggregate{
		{
			Key: "sunscreen", Name: "Apply sunscreen", Icon: "sun", Color: "#old", Concern: "sun-damage",
			Total: 4, Completed: 2, Unknown: 1,
			IDs: []domain.OccurrenceRef{
				{ID: "a", StartsAt: date(2024, time.January, 1)},
				{ID: "b", StartsAt: date(2024, time.January, 3)},
			},
		},
	}
	newer := []domain.TaskAggregate{
		{
			Key: "sunscreen", Name: "Apply SPF 50", Icon: "sun-high", Color: "#new", Concern: "sun-damage",
			Total: 3, Completed: 1, Unknown: 0,
			IDs: []domain.OccurrenceRef{
				{ID: "c", StartsAt: date(2024, time.February, 1)},
			},
		},
	}

	merged := MergeTaskAggregates(previous, newer)

	require.Len(t, merged, 1)
	got := merged[0]
	require.Equal(t, 7, got.Total)
	require.Equal(t, 3, got.Completed)
	require.Equal(t, 1, got.Unknown)
	require.Len(t, got.IDs, 3)
	require.Equal(t, "a", got.IDs[0].ID)
	require.Equal(t, "c", got.IDs[2].ID)

	// Scalars come from the newer record.
	require.Equal(t, "Apply SPF 50", got.Name)
	require.Equal(t, "sun-high", got.Icon)
	require.Equal(t, "#new", got.Color)
}

func TestMergeDoesNotAliasInputRefs(t *testing.T) {
	previous := []domain.TaskAggregate{
		{Key: "sunscreen", IDs: []domain.OccurrenceRef{{ID: "a"}}},
	}
	newer := []domain.TaskAggregate{
		{Key: "sunscreen", IDs: []domain.OccurrenceRef{{ID: "b"}}},
	}

	merged := MergeTaskAggregates(previous, newer)
	merged[0].IDs[0].ID = "mutated"

	require.Equal(t, "a", previous[0].IDs[0].ID)
}

func TestMergeEmptyInputs(t *testing.T) {
	require.Empty(t, MergeTaskAggregates(nil, nil))

	single := []domain.TaskAggregate{{Key: "sunscreen", Total: 4}}
	require.Equal(t, single, MergeTaskAggregates(single, nil))
	require.Equal(t, single, MergeTaskAggregates(nil, single))
}
