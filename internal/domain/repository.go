package domain

import (
	"context"
	"errors"
	"time"
)

// ErrRoutineNotFound is returned when a routine cannot be located.
var ErrRoutineNotFound = errors.New("routine not found")

// RoutineRepository captures persistence operations on routine aggregates.
type RoutineRepository interface {
	Get(ctx context.Context, routineID string) (*Routine, error)
	// UpdateAggregates writes startsAt, lastDate, and allTasks for a routine.
	UpdateAggregates(ctx context.Context, routine *Routine) error
	// ShiftDates adds the offset to the routine's startsAt, lastDate, and to
	// every occurrence ref's startsAt inside allTasks, in a single update.
	ShiftDates(ctx context.Context, routineID string, offset time.Duration) error
}

// TaskRepository captures persistence operations on task occurrences.
type TaskRepository interface {
	InsertMany(ctx context.Context, tasks []Task) error
	ListByRoutine(ctx context.Context, routineID string) ([]Task, error)
	// ShiftByRoutine adds the offset to startsAt and expiresAt of every task
	// owned by the routine.
	ShiftByRoutine(ctx context.Context, routineID string, offset time.Duration) error
	// SoftDelete marks one task deleted without removing it. The task must
	// belong to routineID; a mismatched pair is a not-found, not a delete of
	// another routine's occurrence.
	SoftDelete(ctx context.Context, routineID, taskID string, when time.Time) error
	// CountActiveInWindow counts non-deleted active tasks for a user and body
	// region whose startsAt falls inside [from, to).
	CountActiveInWindow(ctx context.Context, userID, part string, from, to time.Time) (int, error)
}

// NextActionRepository stores per-user cadence records.
type NextActionRepository interface {
	Get(ctx context.Context, userID string, cycleType CycleType) (*NextAction, error)
	Upsert(ctx context.Context, record *NextAction) error
}

// UserRepository exposes the streak slice of the user document.
type UserRepository interface {
	StreakState(ctx context.Context, userID string) (*StreakState, error)
	// IncrementStreak bumps the counter for part and records day as the last
	// increment date for that part.
	IncrementStreak(ctx context.Context, userID, part string, day time.Time) error
}
