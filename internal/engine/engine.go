// Package engine implements the routine scheduling and task-lifecycle core:
// interval generation, schedule assembly and trimming, aggregate merging and
// recalculation, routine rescheduling, and cadence/streak gating.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/retry"
)

// Config carries the engine knobs that were implicit environment lookups in
// earlier iterations of this system. Injected explicitly at construction.
type Config struct {
	// MaxTasksPerSchedule is the global occurrence budget for one schedule.
	MaxTasksPerSchedule int
	// CadenceInterval is how long a completed cycle blocks the next one for
	// the same body region.
	CadenceInterval time.Duration
	// TaskExpiry is how long after its start an occurrence stays actionable.
	TaskExpiry time.Duration
	// BatchSize bounds concurrent store operations during bulk reschedules
	// and recalculations.
	BatchSize int
}

// Stores groups the persistence dependencies of the engine.
type Stores struct {
	Routines domain.RoutineRepository
	Tasks    domain.TaskRepository
	Cadence  domain.NextActionRepository
	Users    domain.UserRepository
}

// EventRecorder accepts domain events for asynchronous delivery. Recording
// is best-effort from the engine's point of view: a failed record is logged
// and the operation still succeeds.
type EventRecorder interface {
	Record(ctx context.Context, eventType, partitionKey string, payload any) error
}

// Engine orchestrates routine lifecycle operations against persisted state.
// It holds no long-lived in-memory state of its own.
type Engine struct {
	cfg    Config
	stores Stores
	events EventRecorder
	exec   *retry.Executor
	log    zerolog.Logger
	now    func() time.Time
}

// Option configures optional behaviour for the Engine.
type Option func(*Engine)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New constructs an Engine.
func New(cfg Config, stores Stores, events EventRecorder, exec *retry.Executor, log zerolog.Logger, opts ...Option) *Engine {
	if cfg.MaxTasksPerSchedule <= 0 {
		cfg.MaxTasksPerSchedule = 45
	}
	if cfg.CadenceInterval <= 0 {
		cfg.CadenceInterval = 7 * 24 * time.Hour
	}
	if cfg.TaskExpiry <= 0 {
		cfg.TaskExpiry = 24 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}

	e := &Engine{
		cfg:    cfg,
		stores: stores,
		events: events,
		exec:   exec,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// record writes a domain event to the outbox, logging instead of failing
// when the outbox itself is unavailable.
func (e *Engine) record(ctx context.Context, eventType, partitionKey string, payload any) {
	if e.events == nil {
		return
	}
	if err := e.events.Record(ctx, eventType, partitionKey, payload); err != nil {
		e.log.Warn().Str("event_type", eventType).Err(err).Msg("failed to record domain event")
	}
}
