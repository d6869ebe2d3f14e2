package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/routine/internal/domain"
)

func TestExtendRoutineMergesNewWindow(t *testing.T) {
	routines := &mockRoutineRepo{routines: map[string]*domain.Routine{
		"routine-1": routineFixture(),
	}}
	tasks := &mockTaskRepo{}
	e := newTestEngine(Config{TaskExpiry: 48 * time.Hour}, Stores{Routines: routines, Tasks: tasks})

	allocations := []domain.Allocation{
		{Key: "sunscreen", Name: "Apply sunscreen", Concern: "sun-damage", Total: 2},
		{Key: "vitamin-c", Name: "Vitamin C serum", Concern: "dullness", Total: 1},
	}
	err := e.ExtendRoutine(context.Background(), "routine-1", allocations,
		date(2024, time.January, 10), date(2024, time.January, 12), nil, nil)
	require.NoError(t, err)

	inserted, err := tasks.ListByRoutine(context.Background(), "routine-1")
	require.NoError(t, err)
	require.Len(t, inserted, 3)
	for _, task := range inserted {
		require.Equal(t, "user-1", task.UserID)
		require.Equal(t, domain.PartFace, task.Part)
		require.Equal(t, task.StartsAt.Add(48*time.Hour), task.ExpiresAt)
	}

	require.Len(t, routines.updated, 1)
	updated := routines.updated[0]

	// Existing activities keep their surviving refs plus the new ones; the
	// new activity is appended after them.
	require.Len(t, updated.AllTasks, 3)
	require.Equal(t, "sunscreen", updated.AllTasks[0].Key)
	require.Equal(t, 4, updated.AllTasks[0].Total)
	require.Equal(t, "retinol", updated.AllTasks[1].Key)
	require.Equal(t, 1, updated.AllTasks[1].Total)
	require.Equal(t, "vitamin-c", updated.AllTasks[2].Key)
	require.Equal(t, 1, updated.AllTasks[2].Total)

	// Date bounds stretch to cover the appended window.
	require.Equal(t, date(2024, time.January, 2), updated.StartsAt)
	require.Equal(t, date(2024, time.January, 12), updated.LastDate)
}

func TestExtendRoutineUnknownRoutine(t *testing.T) {
	e := newTestEngine(Config{}, Stores{Routines: &mockRoutineRepo{}, Tasks: &mockTaskRepo{}})

	err := e.ExtendRoutine(context.Background(), "no-such-routine",
		[]domain.Allocation{{Key: "sunscreen", Concern: "sun-damage", Total: 1}},
		date(2024, time.January, 10), date(2024, time.January, 12), nil, nil)
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestExtendRoutineValidation(t *testing.T) {
	e := newTestEngine(Config{}, Stores{Routines: &mockRoutineRepo{}, Tasks: &mockTaskRepo{}})

	err := e.ExtendRoutine(context.Background(), "", nil, date(2024, time.January, 10), date(2024, time.January, 12), nil, nil)
	require.True(t, domain.IsKind(err, domain.KindValidation))

	err = e.ExtendRoutine(context.Background(), "routine-1", nil, date(2024, time.January, 10), date(2024, time.January, 12), nil, nil)
	require.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestExtendRoutineRejectsInfeasibleWindow(t *testing.T) {
	routines := &mockRoutineRepo{routines: map[string]*domain.Routine{
		"routine-1": routineFixture(),
	}}
	tasks := &mockTaskRepo{}
	e := newTestEngine(Config{}, Stores{Routines: routines, Tasks: tasks})

	// The activity's earliest allowed start is past the window end, so the
	// planned schedule comes back empty.
	err := e.ExtendRoutine(context.Background(), "routine-1",
		[]domain.Allocation{{Key: "sunscreen", Concern: "sun-damage", Total: 2}},
		date(2024, time.January, 10), date(2024, time.January, 12),
		map[string]time.Time{"sunscreen": date(2024, time.February, 1)}, nil)
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.KindValidation))
	require.Empty(t, routines.updated)
	require.Empty(t, tasks.tasks)
}
