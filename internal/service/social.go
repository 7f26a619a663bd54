package service

import (
	"context"
	"errors"
	"sort"

	"github.com/julianstephens/streakd/internal/models"
	"github.com/julianstephens/streakd/internal/period"
	"github.com/julianstephens/streakd/internal/storage"
)

const (
	leaderboardSize   = 10
	feedSize          = 50
	searchResultLimit = 20
	minSearchQueryLen = 2
)

// Follow creates the directed edge actorID -> targetID.
func (s *Service) Follow(ctx context.Context, actorID, targetID string) error {
	if actorID == "" {
		return errUnauthorized()
	}
	if actorID == targetID {
		return errValidation("you cannot follow yourself")
	}

	edge := models.Follow{
		FollowerID: actorID,
		FolloweeID: targetID,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateFollow(ctx, edge); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return errConflict("you are already following this user")
		}
		return errTransient("failed to follow user", err)
	}

	s.invalidate(ScopeSocial)
	return nil
}

// Unfollow removes the edge actorID -> targetID. Removing a missing edge is
// reported as not found rather than treated as an idempotent success.
func (s *Service) Unfollow(ctx context.Context, actorID, targetID string) error {
	if actorID == "" {
		return errUnauthorized()
	}

	if err := s.store.DeleteFollow(ctx, actorID, targetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Error{Kind: KindNotFound, Message: "you are not following this user"}
		}
		return errTransient("failed to unfollow user", err)
	}

	s.invalidate(ScopeSocial)
	return nil
}

// IsFollowing reports whether actorID follows targetID.
func (s *Service) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == "" {
		return false, errUnauthorized()
	}

	following, err := s.store.FollowExists(ctx, actorID, targetID)
	if err != nil {
		return false, errTransient("failed to check follow status", err)
	}
	return following, nil
}

// SearchUsers matches name or email case-insensitively, excluding the actor.
// Queries shorter than two characters return nothing without touching the
// store.
func (s *Service) SearchUsers(ctx context.Context, actorID, query string) ([]models.UserSummary, error) {
	if actorID == "" {
		return nil, errUnauthorized()
	}
	if len(query) < minSearchQueryLen {
		return nil, nil
	}

	results, err := s.store.SearchUsers(ctx, query, actorID, searchResultLimit)
	if err != nil {
		return nil, errTransient("failed to search users", err)
	}
	return results, nil
}

// ActivityFeed returns the most recent completions across the users the
// viewer follows, newest first, enriched for display. Following no one means
// an empty feed and no completion query at all.
func (s *Service) ActivityFeed(ctx context.Context, actorID string) ([]models.FeedEntry, error) {
	if actorID == "" {
		return nil, errUnauthorized()
	}

	followed, err := s.store.ListFollowing(ctx, actorID)
	if err != nil {
		return nil, errTransient("failed to load activity feed", err)
	}
	if len(followed) == 0 {
		return []models.FeedEntry{}, nil
	}

	entries, err := s.store.RecentCompletionsByOwners(ctx, followed, feedSize)
	if err != nil {
		return nil, errTransient("failed to load activity feed", err)
	}
	return entries, nil
}

// Leaderboard ranks every user by the sum of their habits' streaks and keeps
// the top ten. Ties are broken by user id ascending so the output is stable
// across runs. This scans the whole user population: O(users x habits).
func (s *Service) Leaderboard(ctx context.Context, actorID string) ([]models.LeaderboardEntry, error) {
	if actorID == "" {
		return nil, errUnauthorized()
	}

	entries, err := s.store.LeaderboardTotals(ctx)
	if err != nil {
		return nil, errTransient("failed to load leaderboard", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalStreak != entries[j].TotalStreak {
			return entries[i].TotalStreak > entries[j].TotalStreak
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	return entries, nil
}

// CurrentDailyPeriodKey exposes today's DAILY period key for the reminder
// sweep, which runs against the same calendar as the check-in engine.
func (s *Service) CurrentDailyPeriodKey() string {
	return period.Of(models.CadenceDaily, s.now()).String()
}
