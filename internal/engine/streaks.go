package engine

import (
	"context"
	"time"

	"example.com/routine/internal/domain"
	"example.com/routine/internal/observability"
)

// AdvanceStreak bumps the consecutive-completion counter for one body
// region. The increment fires at most once per calendar day in the user's
// time zone, and only while at most one active occurrence remains for the
// region on the current day, so finishing the day's last task is what earns
// the streak. Calling it again the same day is a no-op.
func (e *Engine) AdvanceStreak(ctx context.Context, userID, part string, loc *time.Location) error {
	const op = "engine.AdvanceStreak"

	if userID == "" {
		return domain.Validationf(op, "user id is required")
	}
	if _, ok := domain.StreakField(part); !ok {
		return domain.Validationf(op, "unknown body region %q", part)
	}
	if loc == nil {
		loc = time.UTC
	}

	now := e.now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	var state *domain.StreakState
	if err := e.exec.Do(ctx, op+".state", func(ctx context.Context) error {
		found, err := e.stores.Users.StreakState(ctx, userID)
		if err != nil {
			return err
		}
		state = found
		return nil
	}); err != nil {
		return err
	}

	if state != nil {
		if last, ok := state.StreakDates[part]; ok && !last.In(loc).Before(dayStart) {
			return nil
		}
	}

	var remaining int
	if err := e.exec.Do(ctx, op+".count", func(ctx context.Context) error {
		count, err := e.stores.Tasks.CountActiveInWindow(ctx, userID, part, dayStart, dayEnd)
		if err != nil {
			return err
		}
		remaining = count
		return nil
	}); err != nil {
		return err
	}
	if remaining > 1 {
		return nil
	}

	if err := e.exec.Do(ctx, op+".increment", func(ctx context.Context) error {
		return e.stores.Users.IncrementStreak(ctx, userID, part, dayStart)
	}); err != nil {
		return err
	}

	observability.RecordStreakAdvanced()
	e.log.Info().Str("user_id", userID).Str("part", part).Msg("streak advanced")
	return nil
}
