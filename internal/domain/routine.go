// Package domain defines the persisted shapes and contracts for the routine
// scheduling engine.
package domain

import "time"

// TaskStatus tracks the lifecycle of a single scheduled occurrence.
type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusInactive  TaskStatus = "inactive"
	TaskStatusExpired   TaskStatus = "expired"
	TaskStatusCanceled  TaskStatus = "canceled"
	TaskStatusDeleted   TaskStatus = "deleted"
)

// RoutineStatus tracks the lifecycle of a routine aggregate.
type RoutineStatus string

const (
	RoutineStatusActive   RoutineStatus = "active"
	RoutineStatusInactive RoutineStatus = "inactive"
	RoutineStatusDeleted  RoutineStatus = "deleted"
)

// OccurrenceRef is the denormalized projection of one Task kept inside a
// routine's per-activity aggregate. The Task collection is the source of
// truth; these refs are rebuilt by the recalculator, never hand-patched.
type OccurrenceRef struct {
	ID        string     `bson:"_id" json:"id"`
	StartsAt  time.Time  `bson:"startsAt" json:"startsAt"`
	Status    TaskStatus `bson:"status" json:"status"`
	DeletedOn *time.Time `bson:"deletedOn,omitempty" json:"deletedOn,omitempty"`
}

// Deleted reports whether the occurrence no longer counts toward totals.
func (r OccurrenceRef) Deleted() bool {
	return r.Status == TaskStatusDeleted || r.DeletedOn != nil
}

// TaskAggregate is the per-activity record inside Routine.AllTasks.
type TaskAggregate struct {
	Key       string          `bson:"key" json:"key"`
	Name      string          `bson:"name" json:"name"`
	Icon      string          `bson:"icon" json:"icon"`
	Color     string          `bson:"color" json:"color"`
	Concern   string          `bson:"concern" json:"concern"`
	Total     int             `bson:"total" json:"total"`
	Completed int             `bson:"completed" json:"completed"`
	Unknown   int             `bson:"unknown" json:"unknown"`
	IDs       []OccurrenceRef `bson:"ids" json:"ids"`
}

// Routine groups every activity and occurrence for one user and one body
// region. StartsAt and LastDate are the min/max occurrence start over all
// non-deleted refs; Total per activity counts its non-deleted refs. Those
// invariants are restored by the recalculator after occurrence deletions,
// not maintained on every mutation.
type Routine struct {
	ID        string          `bson:"_id" json:"id"`
	UserID    string          `bson:"userId" json:"userId"`
	Part      string          `bson:"part" json:"part"`
	Concerns  []string        `bson:"concerns" json:"concerns"`
	Status    RoutineStatus   `bson:"status" json:"status"`
	StartsAt  time.Time       `bson:"startsAt" json:"startsAt"`
	LastDate  time.Time       `bson:"lastDate" json:"lastDate"`
	AllTasks  []TaskAggregate `bson:"allTasks" json:"allTasks"`
	DeletedOn *time.Time      `bson:"deletedOn,omitempty" json:"deletedOn,omitempty"`
}

// Task is one persisted occurrence of an activity on a specific date. Owned
// by exactly one routine; soft-deleted by setting DeletedOn, never removed
// while the parent routine exists.
type Task struct {
	ID        string     `bson:"_id" json:"id"`
	UserID    string     `bson:"userId" json:"userId"`
	Key       string     `bson:"key" json:"key"`
	Concern   string     `bson:"concern" json:"concern"`
	Part      string     `bson:"part" json:"part"`
	RoutineID string     `bson:"routineId" json:"routineId"`
	StartsAt  time.Time  `bson:"startsAt" json:"startsAt"`
	ExpiresAt time.Time  `bson:"expiresAt" json:"expiresAt"`
	Status    TaskStatus `bson:"status" json:"status"`
	DeletedOn *time.Time `bson:"deletedOn,omitempty" json:"deletedOn,omitempty"`
}
