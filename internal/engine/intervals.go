package engine

import (
	"time"

	"example.com/routine/internal/domain"
)

// SpreadDates places total occurrence timestamps across [start, end] for one
// activity. The activity's start is clamped forward to earliestByKey[key]
// when that date is later; a clamped start past end means the activity cannot
// fit the window and nil is returned so the caller skips it.
func SpreadDates(key string, start, end time.Time, total int, earliestByKey map[string]time.Time) ([]time.Time, error) {
	const op = "engine.SpreadDates"

	if total <= 0 {
		return nil, domain.Validationf(op, "total must be a positive integer, got %d", total)
	}
	if start.IsZero() || end.IsZero() {
		return nil, domain.Validationf(op, "start and end dates are required")
	}

	if earliest, ok := earliestByKey[key]; ok && earliest.After(start) {
		start = earliest
	}
	if start.After(end) {
		return nil, nil
	}

	if total == 1 {
		return []time.Time{start}, nil
	}

	step := intervalStep(start, end, total)
	dates := make([]time.Time, total)
	for i := range dates {
		dates[i] = start.Add(time.Duration(i) * step)
	}
	return dates, nil
}

// intervalStep is the canonical spacing used by every call site: total-1
// equal intervals spanning the window inclusive of both endpoints, so the
// first occurrence lands on start and the last on end.
func intervalStep(start, end time.Time, total int) time.Duration {
	return end.Sub(start) / time.Duration(total-1)
}
