package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/streakd/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint:
	// duplicate (owner, habit name), duplicate follow edge, or a second
	// completion for the same (habit, period key).
	ErrDuplicate = errors.New("duplicate")
)

// ReminderTarget identifies one habit that still needs a check-in this period.
type ReminderTarget struct {
	Email     string
	UserName  string
	HabitName string
}

// Provider is the durable store contract. Implementations must offer atomic
// multi-write transactions and must surface uniqueness violations as
// ErrDuplicate so callers can tell conflicts from transient failures.
type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Users
	CreateUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	SearchUsers(ctx context.Context, query, excludeID string, limit int) ([]models.UserSummary, error)

	// Habits
	CreateHabit(ctx context.Context, h models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	ListHabitsByOwner(ctx context.Context, ownerID, category string) ([]models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error

	// Completions
	ListCompletions(ctx context.Context, habitID string, limit int) ([]models.HabitCompletion, error)
	// RecordCheckIn inserts the completion and increments the habit's streak
	// in one transaction. A (habit, period key) collision yields ErrDuplicate
	// with no streak change.
	RecordCheckIn(ctx context.Context, c models.HabitCompletion) error

	// Aggregates
	LeaderboardTotals(ctx context.Context) ([]models.LeaderboardEntry, error)
	RecentCompletionsByOwners(ctx context.Context, ownerIDs []string, limit int) ([]models.FeedEntry, error)
	PendingDailyReminders(ctx context.Context, periodKey string) ([]ReminderTarget, error)

	// Follow graph
	CreateFollow(ctx context.Context, f models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followeeID string) error
	FollowExists(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowing(ctx context.Context, followerID string) ([]string, error)
}
