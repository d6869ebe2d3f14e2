package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/retry"
)

func newTestEngine(cfg Config, stores Stores, opts ...Option) *Engine {
	exec := retry.NewExecutor(3, time.Millisecond, zerolog.Nop())
	return New(cfg, stores, nil, exec, zerolog.Nop(), opts...)
}

type mockRoutineRepo struct {
	mu         sync.Mutex
	routines   map[string]*domain.Routine
	shiftCalls []time.Duration
	shiftFails int
	updated    []*domain.Routine
}

func (m *mockRoutineRepo) Get(ctx context.Context, routineID string) (*domain.Routine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	routine, ok := m.routines[routineID]
	if !ok {
		return nil, domain.E("mock.Get", domain.KindNotFound, domain.ErrRoutineNotFound)
	}
	clone := *routine
	clone.AllTasks = append([]domain.TaskAggregate(nil), routine.AllTasks...)
	return &clone, nil
}

func (m *mockRoutineRepo) UpdateAggregates(ctx context.Context, routine *domain.Routine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *routine
	m.updated = append(m.updated, &clone)
	if m.routines == nil {
		m.routines = make(map[string]*domain.Routine)
	}
	m.routines[routine.ID] = &clone
	return nil
}

func (m *mockRoutineRepo) ShiftDates(ctx context.Context, routineID string, offset time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shiftFails > 0 {
		m.shiftFails--
		return domain.E("mock.ShiftDates", domain.KindTransient, errTransient)
	}
	m.shiftCalls = append(m.shiftCalls, offset)
	if routine, ok := m.routines[routineID]; ok {
		routine.StartsAt = routine.StartsAt.Add(offset)
		routine.LastDate = routine.LastDate.Add(offset)
		for i := range routine.AllTasks {
			for j := range routine.AllTasks[i].IDs {
				routine.AllTasks[i].IDs[j].StartsAt = routine.AllTasks[i].IDs[j].StartsAt.Add(offset)
			}
		}
	}
	return nil
}

type mockTaskRepo struct {
	mu          sync.Mutex
	tasks       map[string]*domain.Task
	shiftCalls  []time.Duration
	shiftFails  int
	activeCount int
}

func (m *mockTaskRepo) InsertMany(ctx context.Context, tasks []domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks == nil {
		m.tasks = make(map[string]*domain.Task)
	}
	for _, task := range tasks {
		clone := task
		m.tasks[task.ID] = &clone
	}
	return nil
}

func (m *mockTaskRepo) ListByRoutine(ctx context.Context, routineID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if task.RoutineID == routineID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) ShiftByRoutine(ctx context.Context, routineID string, offset time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shiftFails > 0 {
		m.shiftFails--
		return domain.E("mock.ShiftByRoutine", domain.KindTransient, errTransient)
	}
	m.shiftCalls = append(m.shiftCalls, offset)
	for _, task := range m.tasks {
		if task.RoutineID == routineID {
			task.StartsAt = task.StartsAt.Add(offset)
			task.ExpiresAt = task.ExpiresAt.Add(offset)
		}
	}
	return nil
}

func (m *mockTaskRepo) SoftDelete(ctx context.Context, routineID, taskID string, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok || task.RoutineID != routineID {
		return domain.E("mock.SoftDelete", domain.KindNotFound, errNotFound)
	}
	task.Status = domain.TaskStatusDeleted
	task.DeletedOn = &when
	return nil
}

func (m *mockTaskRepo) CountActiveInWindow(ctx context.Context, userID, part string, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeCount, nil
}

type mockCadenceRepo struct {
	mu      sync.Mutex
	records map[domain.CycleType]*domain.NextAction
	upserts []*domain.NextAction
}

func (m *mockCadenceRepo) Get(ctx context.Context, userID string, cycleType domain.CycleType) (*domain.NextAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[cycleType]
	if !ok {
		return nil, domain.E("mock.Get", domain.KindNotFound, errNotFound)
	}
	clone := *record
	clone.Parts = append([]domain.CyclePart(nil), record.Parts...)
	return &clone, nil
}

func (m *mockCadenceRepo) Upsert(ctx context.Context, record *domain.NextAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *record
	m.upserts = append(m.upserts, &clone)
	if m.records == nil {
		m.records = make(map[domain.CycleType]*domain.NextAction)
	}
	m.records[record.Type] = &clone
	return nil
}

type mockUserRepo struct {
	mu         sync.Mutex
	state      *domain.StreakState
	increments []string
}

func (m *mockUserRepo) StreakState(ctx context.Context, userID string) (*domain.StreakState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *mockUserRepo) IncrementStreak(ctx context.Context, userID, part string, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments = append(m.increments, part)
	return nil
}

type errString string

func (e errString) Error() string { return string(e) }

const (
	errTransient = errString("connection reset")
	errNotFound  = errString("record not found")
)
