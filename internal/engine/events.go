package engine

import "time"

// Domain event types emitted through the outbox.
const (
	EventRoutineRescheduled  = "routine.rescheduled"
	EventRoutineRecalculated = "routine.recalculated"
	EventRoutineExtended     = "routine.extended"
	EventCycleCompleted      = "cycle.completed"
)

// RoutineRescheduledEvent is emitted after a routine and its occurrences are
// shifted by a day offset.
type RoutineRescheduledEvent struct {
	RoutineID  string    `json:"routineId"`
	DaysOffset int       `json:"daysOffset"`
	OccurredAt time.Time `json:"occurredAt"`
}

// RoutineRecalculatedEvent is emitted after a routine's aggregate totals and
// date bounds are rebuilt from its task occurrences.
type RoutineRecalculatedEvent struct {
	RoutineID  string    `json:"routineId"`
	StartsAt   time.Time `json:"startsAt"`
	LastDate   time.Time `json:"lastDate"`
	OccurredAt time.Time `json:"occurredAt"`
}

// RoutineExtendedEvent is emitted after a new window of occurrences is
// planned, materialized, and merged into an existing routine.
type RoutineExtendedEvent struct {
	RoutineID  string    `json:"routineId"`
	TasksAdded int       `json:"tasksAdded"`
	StartsAt   time.Time `json:"startsAt"`
	LastDate   time.Time `json:"lastDate"`
	OccurredAt time.Time `json:"occurredAt"`
}

// CycleCompletedEvent is emitted when a user completes a scan or routine
// cycle and the cadence gate advances.
type CycleCompletedEvent struct {
	UserID     string    `json:"userId"`
	CycleType  string    `json:"cycleType"`
	Parts      []string  `json:"parts"`
	NextDate   time.Time `json:"nextDate"`
	OccurredAt time.Time `json:"occurredAt"`
}
