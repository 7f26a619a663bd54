package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakd/internal/models"
	"github.com/julianstephens/streakd/internal/service"
	"github.com/julianstephens/streakd/internal/storage"
)

func TestFollowSelfRejected(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Follow(context.Background(), "u1", "u1")
	require.Error(t, err)
	assert.Equal(t, service.KindValidation, service.KindOf(err))
	assert.Equal(t, "you cannot follow yourself", service.UserMessage(err))
}

func TestFollowDuplicateRejected(t *testing.T) {
	svc, _, _, rec := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	assert.Contains(t, rec.scopes, service.ScopeSocial)

	err := svc.Follow(ctx, "u1", "u2")
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	assert.Equal(t, "you are already following this user", service.UserMessage(err))
}

func TestUnfollow(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Follow(ctx, "u1", "u2"))
	require.NoError(t, svc.Unfollow(ctx, "u1", "u2"))

	// Removing a missing edge reports a failure, it is not a silent no-op.
	err := svc.Unfollow(ctx, "u1", "u2")
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestIsFollowing(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	following, err := svc.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, svc.Follow(ctx, "u1", "u2"))

	following, err = svc.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, following)

	// Follows are directed.
	following, err = svc.IsFollowing(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, following)
}

func TestActivityFeedEmptyWithoutFollows(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	feed, err := svc.ActivityFeed(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestActivityFeedShowsFollowedCompletions(t *testing.T) {
	svc, _, clock, _ := newTestService(t)
	ctx := context.Background()

	bobHabit, err := svc.CreateHabit(ctx, "u2", service.CreateHabitInput{
		Name: "Run", Category: "fitness", Cadence: models.CadenceDaily,
	})
	require.NoError(t, err)
	require.NoError(t, svc.CheckIn(ctx, "u2", bobHabit.ID, "5k"))
	clock.Advance(24 * time.Hour)
	require.NoError(t, svc.CheckIn(ctx, "u2", bobHabit.ID, "10k"))

	// Alice's own completions never show in her feed, only followed users'.
	aliceHabit, err := svc.CreateHabit(ctx, "u1", service.CreateHabitInput{
		Name: "Meditate", Category: "health", Cadence: models.CadenceDaily,
	})
	require.NoError(t, err)
	require.NoError(t, svc.CheckIn(ctx, "u1", aliceHabit.ID, ""))

	require.NoError(t, svc.Follow(ctx, "u1", "u2"))

	feed, err := svc.ActivityFeed(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, feed, 2)

	assert.Equal(t, "10k", feed[0].Note)
	assert.Equal(t, "5k", feed[1].Note)
	assert.Equal(t, "Run", feed[0].HabitName)
	assert.Equal(t, "Bob", feed[0].UserName)
	assert.Equal(t, "bob@example.com", feed[0].UserEmail)
}

func TestLeaderboardRanking(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	seedUser(t, store, "u3", "Cara", "cara@example.com")

	// Streak totals 5, 3, and 2+2 across three users.
	seedHabitWithStreak(t, store, "u1", "Meditate", 5)
	seedHabitWithStreak(t, store, "u2", "Run", 3)
	seedHabitWithStreak(t, store, "u3", "Read", 2)
	seedHabitWithStreak(t, store, "u3", "Write", 2)

	board, err := svc.Leaderboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, board, 3)

	assert.Equal(t, "u1", board[0].UserID)
	assert.Equal(t, 5, board[0].TotalStreak)
	assert.Equal(t, "u3", board[1].UserID)
	assert.Equal(t, 4, board[1].TotalStreak)
	assert.Equal(t, 2, board[1].HabitCount)
	assert.Equal(t, "u2", board[2].UserID)
	assert.Equal(t, 3, board[2].TotalStreak)
}

func TestLeaderboardTieBreakAndTruncation(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	// Twelve users, all tied at streak 1: ranking falls back to user id
	// ascending and only ten survive.
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("z%02d", i)
		seedUser(t, store, id, fmt.Sprintf("User %02d", i), fmt.Sprintf("user%02d@example.com", i))
		seedHabitWithStreak(t, store, id, "Stretch", 1)
	}

	board, err := svc.Leaderboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, board, 10)

	// u1/u2 have no habits (total 0) and sort below every z user; z10/z11
	// lose the tie-break.
	assert.Equal(t, "z00", board[0].UserID)
	assert.Equal(t, "z09", board[9].UserID)
}

func TestSearchUsersGating(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	// Single-character queries return nothing and skip the store.
	results, err := svc.SearchUsers(ctx, "u2", "a")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.SearchUsers(ctx, "u2", "al")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Alice", results[0].Name)

	// The searcher is excluded from their own results.
	results, err = svc.SearchUsers(ctx, "u1", "alice")
	require.NoError(t, err)
	assert.Empty(t, results)
}

// seedHabitWithStreak writes straight to the store: the service only ever
// moves a streak one check-in at a time.
func seedHabitWithStreak(t *testing.T, store storage.Provider, ownerID, name string, streak int) {
	t.Helper()

	require.NoError(t, store.CreateHabit(context.Background(), models.Habit{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Category:  "general",
		Cadence:   models.CadenceDaily,
		Streak:    streak,
		CreatedAt: time.Now(),
	}))
}
