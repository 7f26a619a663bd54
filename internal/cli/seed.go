package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streakd/internal/models"
	"github.com/julianstephens/streakd/internal/period"
	"github.com/julianstephens/streakd/internal/storage"
)

type SeedCmd struct{}

// Run loads a demo data set: a handful of users, habits with established
// streaks, back-dated check-in history for a few of them, and one follow
// edge so the activity feed has content out of the box.
func (c *SeedCmd) Run(cliCtx *Context) error {
	if err := cliCtx.Store.Init(); err != nil {
		return err
	}
	defer cliCtx.Store.Close()

	ctx := context.Background()
	now := time.Now()

	users := []models.User{
		{ID: "u-reviewer", Name: "Reviewer", Email: "reviewer@demo.com", CreatedAt: now},
		{ID: "u-test", Name: "Test User", Email: "testuser@streakd.dev", CreatedAt: now},
		{ID: "u-demo", Name: "Demo User", Email: "demo@streakd.dev", CreatedAt: now},
		{ID: "u-alice", Name: "Alice Johnson", Email: "alice@streakd.dev", CreatedAt: now},
		{ID: "u-bob", Name: "Bob Smith", Email: "bob@streakd.dev", CreatedAt: now},
		{ID: "u-charlie", Name: "Charlie Brown", Email: "charlie@streakd.dev", CreatedAt: now},
		{ID: "u-diana", Name: "Diana Prince", Email: "diana@streakd.dev", CreatedAt: now},
	}
	for _, u := range users {
		if err := cliCtx.Store.CreateUser(ctx, u); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				fmt.Println("Seed data already present, nothing to do.")
				return nil
			}
			return err
		}
	}

	// Habits that get real check-in history start at streak 0; RecordCheckIn
	// brings them up to the right count.
	habits := []models.Habit{
		{ID: "h-exercise", OwnerID: "u-test", Name: "Morning Exercise", Category: "Health", Cadence: models.CadenceDaily},
		{ID: "h-reading", OwnerID: "u-test", Name: "Read Books", Category: "Education", Cadence: models.CadenceDaily},
		{ID: "h-meditation", OwnerID: "u-test", Name: "Meditation", Category: "Wellness", Cadence: models.CadenceDaily, Streak: 3},
		{ID: "h-review", OwnerID: "u-test", Name: "Weekly Review", Category: "Productivity", Cadence: models.CadenceWeekly, Streak: 8},
		{ID: "h-yoga", OwnerID: "u-demo", Name: "Yoga", Category: "Health", Cadence: models.CadenceWeekly},
		{ID: "h-running", OwnerID: "u-alice", Name: "Running", Category: "Fitness", Cadence: models.CadenceDaily},
		{ID: "h-journaling", OwnerID: "u-alice", Name: "Journaling", Category: "Productivity", Cadence: models.CadenceDaily, Streak: 8},
		{ID: "h-coding", OwnerID: "u-bob", Name: "Coding Practice", Category: "Learning", Cadence: models.CadenceDaily, Streak: 20},
		{ID: "h-guitar", OwnerID: "u-charlie", Name: "Guitar Practice", Category: "Hobbies", Cadence: models.CadenceDaily, Streak: 10},
		{ID: "h-painting", OwnerID: "u-diana", Name: "Painting", Category: "Art", Cadence: models.CadenceWeekly, Streak: 6},
	}
	for _, h := range habits {
		h.CreatedAt = now
		if err := cliCtx.Store.CreateHabit(ctx, h); err != nil {
			return err
		}
	}

	if err := cliCtx.Store.CreateFollow(ctx, models.Follow{
		FollowerID: "u-test", FolloweeID: "u-demo", CreatedAt: now,
	}); err != nil {
		return err
	}

	history := []struct {
		habitID string
		days    int
		notes   map[int]string
	}{
		{"h-exercise", 5, map[int]string{0: "Great workout today!"}},
		{"h-reading", 12, map[int]string{0: "Finished chapter 5"}},
		{"h-running", 15, map[int]string{0: "5km run completed!", 3: "New personal best!"}},
	}
	for _, hist := range history {
		for i := 0; i < hist.days; i++ {
			day := now.AddDate(0, 0, -i)
			err := cliCtx.Store.RecordCheckIn(ctx, models.HabitCompletion{
				ID:        uuid.NewString(),
				HabitID:   hist.habitID,
				PeriodKey: period.Of(models.CadenceDaily, day).String(),
				Note:      hist.notes[i],
				CreatedAt: day,
			})
			if err != nil {
				return err
			}
		}
	}

	fmt.Println("Seed data loaded.")
	fmt.Println()
	fmt.Println("Users (pass the id in the X-Streakd-User header):")
	for _, u := range users {
		fmt.Printf("  %-10s %s <%s>\n", u.ID, u.Name, u.Email)
	}
	return nil
}
