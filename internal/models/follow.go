package models

import "time"

// Follow is a directed edge in the follow graph. No self-edges; at most one
// edge per ordered (FollowerID, FolloweeID) pair.
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalStreak int    `json:"total_streak"`
	HabitCount  int    `json:"habit_count"`
}

// FeedEntry is a completion enriched for display in the activity feed.
type FeedEntry struct {
	CompletionID string    `json:"completion_id"`
	CompletedAt  time.Time `json:"completed_at"`
	Note         string    `json:"note,omitempty"`
	HabitName    string    `json:"habit_name"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
}
