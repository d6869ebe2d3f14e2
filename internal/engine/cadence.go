package engine

import (
	"context"
	"sort"
	"time"

	"example.com/routine/internal/domain"
)

// Gate is the outcome of a cadence check. When Allowed is false, NextDate
// holds the earliest date the blocked cycle may start.
type Gate struct {
	Allowed  bool
	NextDate *time.Time
}

// ScanGateFrom evaluates whether a new scan cycle may begin. Every tracked
// body region the user has not just analyzed must have a cadence date at or
// before now; the earliest future date among blocking regions is reported.
// Regions without a prior cadence entry are immediately eligible.
func ScanGateFrom(record *domain.NextAction, analyzedParts []string, now time.Time) Gate {
	if record == nil {
		return Gate{Allowed: true}
	}

	analyzed := make(map[string]bool, len(analyzedParts))
	for _, part := range analyzedParts {
		analyzed[part] = true
	}

	var earliest *time.Time
	for _, entry := range record.Parts {
		if analyzed[entry.Part] {
			continue
		}
		if entry.Date.After(now) {
			if earliest == nil || entry.Date.Before(*earliest) {
				date := entry.Date
				earliest = &date
			}
		}
	}

	if earliest != nil {
		return Gate{Allowed: false, NextDate: earliest}
	}
	return Gate{Allowed: true}
}

// RoutineGateFrom evaluates whether a routine cycle may begin for one body
// region: the region must have been scanned at least once, and its cadence
// date, when present, must not be in the future.
func RoutineGateFrom(record *domain.NextAction, scannedParts []string, part string, now time.Time) Gate {
	scanned := false
	for _, p := range scannedParts {
		if p == part {
			scanned = true
			break
		}
	}
	if !scanned {
		return Gate{Allowed: false}
	}

	if record != nil {
		for _, entry := range record.Parts {
			if entry.Part != part {
				continue
			}
			if entry.Date.After(now) {
				date := entry.Date
				return Gate{Allowed: false, NextDate: &date}
			}
		}
	}
	return Gate{Allowed: true}
}

// AdvanceCadenceRecord sets each completed part's cadence date to next,
// re-sorts the part list ascending by date, and pins the record's top-level
// date to the new minimum.
func AdvanceCadenceRecord(record *domain.NextAction, parts []string, next time.Time) {
	for _, part := range parts {
		updated := false
		for i := range record.Parts {
			if record.Parts[i].Part == part {
				record.Parts[i].Date = next
				updated = true
				break
			}
		}
		if !updated {
			record.Parts = append(record.Parts, domain.CyclePart{Part: part, Date: next})
		}
	}

	sort.Slice(record.Parts, func(i, j int) bool {
		return record.Parts[i].Date.Before(record.Parts[j].Date)
	})
	if len(record.Parts) > 0 {
		record.Date = record.Parts[0].Date
	}
}

// CanStartScan reports whether the user may begin a new scan cycle given the
// regions just analyzed.
func (e *Engine) CanStartScan(ctx context.Context, userID string, analyzedParts []string) (Gate, error) {
	const op = "engine.CanStartScan"

	record, err := e.cadenceRecord(ctx, op, userID, domain.CycleScan)
	if err != nil {
		return Gate{}, err
	}
	return ScanGateFrom(record, analyzedParts, e.now()), nil
}

// CanStartRoutine reports whether a routine cycle may begin for the given
// body region, given the regions the user has scanned.
func (e *Engine) CanStartRoutine(ctx context.Context, userID, part string, scannedParts []string) (Gate, error) {
	const op = "engine.CanStartRoutine"

	if part == "" {
		return Gate{}, domain.Validationf(op, "part is required")
	}
	record, err := e.cadenceRecord(ctx, op, userID, domain.CycleRoutine)
	if err != nil {
		return Gate{}, err
	}
	return RoutineGateFrom(record, scannedParts, part, e.now()), nil
}

// AdvanceCadence moves the cadence gate forward after a completed cycle:
// each completed region's next-eligible date becomes now plus the configured
// cadence interval.
func (e *Engine) AdvanceCadence(ctx context.Context, userID string, cycleType domain.CycleType, parts []string) error {
	const op = "engine.AdvanceCadence"

	if userID == "" {
		return domain.Validationf(op, "user id is required")
	}
	if len(parts) == 0 {
		return domain.Validationf(op, "at least one part is required")
	}

	record, err := e.cadenceRecord(ctx, op, userID, cycleType)
	if err != nil {
		return err
	}
	if record == nil {
		record = &domain.NextAction{UserID: userID, Type: cycleType}
	}

	next := e.now().UTC().Add(e.cfg.CadenceInterval)
	AdvanceCadenceRecord(record, parts, next)

	if err := e.exec.Do(ctx, op+".upsert", func(ctx context.Context) error {
		return e.stores.Cadence.Upsert(ctx, record)
	}); err != nil {
		return err
	}

	e.record(ctx, EventCycleCompleted, userID, CycleCompletedEvent{
		UserID:     userID,
		CycleType:  string(cycleType),
		Parts:      parts,
		NextDate:   next,
		OccurredAt: e.now().UTC(),
	})
	return nil
}

func (e *Engine) cadenceRecord(ctx context.Context, op, userID string, cycleType domain.CycleType) (*domain.NextAction, error) {
	if userID == "" {
		return nil, domain.Validationf(op, "user id is required")
	}

	var record *domain.NextAction
	err := e.exec.Do(ctx, op+".get", func(ctx context.Context) error {
		found, err := e.stores.Cadence.Get(ctx, userID, cycleType)
		if err != nil {
			return err
		}
		record = found
		return nil
	})
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
