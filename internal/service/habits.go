package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/julianstephens/streakd/internal/models"
	"github.com/julianstephens/streakd/internal/period"
	"github.com/julianstephens/streakd/internal/storage"
)

// CreateHabitInput carries the user-supplied fields for a new habit.
type CreateHabitInput struct {
	Name     string         `json:"name" validate:"required,min=2,max=100"`
	Category string         `json:"category" validate:"required,min=2,max=50"`
	Cadence  models.Cadence `json:"cadence" validate:"required,oneof=DAILY WEEKLY"`
}

// HabitStatus is a habit prepared for display: its most recent completions
// plus whether the current period already has a check-in. The flag is derived
// from the newest completion's period key, not the truncated display window,
// so it stays correct no matter how much history the habit accumulates.
type HabitStatus struct {
	models.Habit
	RecentCompletions   []models.HabitCompletion `json:"recent_completions"`
	CheckedInThisPeriod bool                     `json:"checked_in_this_period"`
}

// recentCompletionsWindow bounds the history attached to each habit for
// display. Correctness never depends on it.
const recentCompletionsWindow = 30

// CreateHabit validates the input and creates a habit owned by actorID.
// A duplicate (owner, name) pair is a conflict, not a crash.
func (s *Service) CreateHabit(ctx context.Context, actorID string, in CreateHabitInput) (models.Habit, error) {
	if actorID == "" {
		return models.Habit{}, errUnauthorized()
	}

	if err := s.validate.Struct(in); err != nil {
		return models.Habit{}, errValidation(firstViolation(err))
	}

	habit := models.Habit{
		ID:        uuid.NewString(),
		OwnerID:   actorID,
		Name:      in.Name,
		Category:  in.Category,
		Cadence:   in.Cadence,
		CreatedAt: s.now(),
	}

	if err := s.store.CreateHabit(ctx, habit); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return models.Habit{}, errConflict("you already have a habit with this name")
		}
		return models.Habit{}, errTransient("failed to create habit", err)
	}

	s.logger.Info("habit created", "habit_id", habit.ID, "owner_id", actorID, "cadence", habit.Cadence)
	s.invalidate(ScopeDashboard)
	return habit, nil
}

// ListHabits returns the actor's habits, newest first, optionally filtered by
// category ("" and "all" mean no filter).
func (s *Service) ListHabits(ctx context.Context, actorID, category string) ([]HabitStatus, error) {
	if actorID == "" {
		return nil, errUnauthorized()
	}

	habits, err := s.store.ListHabitsByOwner(ctx, actorID, category)
	if err != nil {
		return nil, errTransient("failed to load habits", err)
	}

	now := s.now()
	statuses := make([]HabitStatus, 0, len(habits))
	for _, h := range habits {
		recent, err := s.store.ListCompletions(ctx, h.ID, recentCompletionsWindow)
		if err != nil {
			return nil, errTransient("failed to load habits", err)
		}

		// At most one completion exists per period, so the newest completion
		// is in the current period iff any completion is.
		checkedIn := len(recent) > 0 && recent[0].PeriodKey == period.Of(h.Cadence, now).String()

		statuses = append(statuses, HabitStatus{
			Habit:               h,
			RecentCompletions:   recent,
			CheckedInThisPeriod: checkedIn,
		})
	}

	return statuses, nil
}

// DeleteHabit removes an owned habit and, through the store, its completions.
func (s *Service) DeleteHabit(ctx context.Context, actorID, habitID string) error {
	if actorID == "" {
		return errUnauthorized()
	}

	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errHabitNotFound()
		}
		return errTransient("failed to delete habit", err)
	}

	if err := s.assertOwner(actorID, habit.OwnerID); err != nil {
		return err
	}

	if err := s.store.DeleteHabit(ctx, habitID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errHabitNotFound()
		}
		return errTransient("failed to delete habit", err)
	}

	s.logger.Info("habit deleted", "habit_id", habitID, "owner_id", actorID)
	s.invalidate(ScopeDashboard)
	return nil
}

// assertOwner is checked against the freshly loaded owner at mutation time,
// never against caller-supplied state.
func (s *Service) assertOwner(actorID, ownerID string) error {
	if actorID != ownerID {
		s.logger.Debug("ownership mismatch", "actor_id", actorID, "owner_id", ownerID)
		return errHabitForbidden()
	}
	return nil
}

// firstViolation renders the first violated rule the way the form shows it.
func firstViolation(err error) string {
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) || len(violations) == 0 {
		return "invalid input"
	}

	fe := violations[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
