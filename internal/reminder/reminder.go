// Package reminder implements the externally triggered sweep that finds
// daily habits with no check-in for the current period and hands one
// notification request per pending habit to a Notifier. The sweep is
// stateless between invocations and never sends messages itself beyond the
// Notifier contract.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/julianstephens/streakd/internal/models"
	"github.com/julianstephens/streakd/internal/period"
	"github.com/julianstephens/streakd/internal/storage"
)

// Notifier delivers a single reminder. Implementations decide the transport.
type Notifier interface {
	SendReminder(ctx context.Context, to, userName, habitName string) error
}

// Result is the outcome of one reminder attempt.
type Result struct {
	Email     string `json:"email"`
	HabitName string `json:"habit_name"`
	Sent      bool   `json:"sent"`
	Error     string `json:"error,omitempty"`
}

// Summary reports the whole sweep: a failed recipient never blocks the rest.
type Summary struct {
	Attempted int      `json:"attempted"`
	Sent      int      `json:"sent"`
	Results   []Result `json:"results"`
}

type Sweeper struct {
	store    storage.Provider
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Sweeper)

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = logger }
}

func NewSweeper(store storage.Provider, notifier Notifier, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:    store,
		notifier: notifier,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one sweep. Each pending daily habit yields one independent
// reminder; a user with three pending habits gets three messages.
func (s *Sweeper) Run(ctx context.Context) (Summary, error) {
	key := period.Of(models.CadenceDaily, s.now()).String()

	targets, err := s.store.PendingDailyReminders(ctx, key)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Results: make([]Result, 0, len(targets))}
	for _, t := range targets {
		summary.Attempted++
		result := Result{Email: t.Email, HabitName: t.HabitName}

		if err := s.notifier.SendReminder(ctx, t.Email, t.UserName, t.HabitName); err != nil {
			result.Error = err.Error()
			s.logger.Warn("reminder failed", "email", t.Email, "habit", t.HabitName, "error", err)
		} else {
			result.Sent = true
			summary.Sent++
		}

		summary.Results = append(summary.Results, result)
	}

	s.logger.Info("reminder sweep finished", "period", key, "attempted", summary.Attempted, "sent", summary.Sent)
	return summary, nil
}
