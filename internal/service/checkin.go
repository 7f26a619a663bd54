package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/julianstephens/streakd/internal/models"
	"github.com/julianstephens/streakd/internal/period"
	"github.com/julianstephens/streakd/internal/storage"
)

// CheckIn records a completion for the current period and increments the
// habit's streak, atomically. A second check-in within the same period is a
// conflict, not an error worth logging. The store's (habit, period key)
// uniqueness constraint closes the race between the eligibility read here and
// the write: if two check-ins slip past the scan concurrently, exactly one
// insert (and one increment) lands.
func (s *Service) CheckIn(ctx context.Context, actorID, habitID, note string) error {
	if actorID == "" {
		return errUnauthorized()
	}

	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errHabitNotFound()
		}
		return errTransient("failed to check in", err)
	}

	if err := s.assertOwner(actorID, habit.OwnerID); err != nil {
		return err
	}

	// Full history, not a display window: a truncated scan could miss the
	// current period's completion once history outgrows the window.
	completions, err := s.store.ListCompletions(ctx, habitID, 0)
	if err != nil {
		return errTransient("failed to check in", err)
	}

	now := s.now()
	currentKey := period.Of(habit.Cadence, now).String()
	for _, c := range completions {
		if c.PeriodKey == currentKey {
			return errAlreadyCheckedIn(habit.Cadence)
		}
	}

	completion := models.HabitCompletion{
		ID:        uuid.NewString(),
		HabitID:   habit.ID,
		PeriodKey: currentKey,
		Note:      note,
		CreatedAt: now,
	}
	if err := s.store.RecordCheckIn(ctx, completion); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost the race to a concurrent check-in for the same period.
			return errAlreadyCheckedIn(habit.Cadence)
		}
		return errTransient("failed to check in", err)
	}

	s.logger.Info("check-in recorded", "habit_id", habit.ID, "period", currentKey)
	s.invalidate(ScopeDashboard)
	return nil
}
