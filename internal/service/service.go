// Package service implements the streakd core: the check-in engine, habit
// lifecycle, follow graph, and the leaderboard and activity feed aggregators.
// Every entry point takes the acting user's id and returns a typed *Error on
// failure; storage errors never escape unwrapped.
package service

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julianstephens/streakd/internal/storage"
)

// Invalidator receives a hint that cached views for a scope are stale after
// a successful mutation. The mechanism behind it is external.
type Invalidator interface {
	Invalidate(scope string)
}

// InvalidatorFunc adapts a function to the Invalidator interface.
type InvalidatorFunc func(scope string)

func (f InvalidatorFunc) Invalidate(scope string) { f(scope) }

// View scopes emitted on mutation.
const (
	ScopeDashboard = "dashboard"
	ScopeSocial    = "social"
)

type Service struct {
	store    storage.Provider
	validate *validator.Validate
	inv      Invalidator
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source. Tests use this to pin the period.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithInvalidator sets the view-invalidation sink.
func WithInvalidator(inv Invalidator) Option {
	return func(s *Service) { s.inv = inv }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		validate: validator.New(),
		inv:      InvalidatorFunc(func(string) {}),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) invalidate(scope string) {
	s.inv.Invalidate(scope)
}
