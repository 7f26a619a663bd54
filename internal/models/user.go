package models

import "time"

// User is an account created by the external registration flow. The core
// never mutates users; it only reads them for display and aggregation.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is a search result annotated with social counts.
type UserSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	HabitCount    int    `json:"habit_count"`
	FollowerCount int    `json:"follower_count"`
}
