package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/streakd/internal/migration"
	"github.com/julianstephens/streakd/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create the data directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	// foreign_keys must be set per connection, so it goes in the DSN
	db, err := sql.Open("sqlite", "file:"+s.path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	fsys, err := dialectMigrations("sqlite")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := migration.NewRunner(s.db, fsys).ApplyMigrations(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, created_at FROM users WHERE id = ?", id)

	var u models.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = parseStoredTime(createdAt)

	return u, nil
}

func (s *SQLiteStore) SearchUsers(ctx context.Context, query, excludeID string, limit int) ([]models.UserSummary, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email,
		       (SELECT COUNT(*) FROM habits h WHERE h.owner_id = u.id),
		       (SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id)
		FROM users u
		WHERE u.id != ? AND (LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ?)
		ORDER BY u.name ASC
		LIMIT ?`, excludeID, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var results []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.HabitCount, &u.FollowerCount); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		results = append(results, u)
	}

	return results, rows.Err()
}

func (s *SQLiteStore) CreateHabit(ctx context.Context, h models.Habit) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO habits (id, owner_id, name, category, cadence, streak, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		h.ID, h.OwnerID, h.Name, h.Category, string(h.Cadence), h.Streak, h.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, owner_id, name, category, cadence, streak, created_at FROM habits WHERE id = ?", id)

	h, err := scanHabit(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Habit{}, ErrNotFound
		}
		return models.Habit{}, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, nil
}

func (s *SQLiteStore) ListHabitsByOwner(ctx context.Context, ownerID, category string) ([]models.Habit, error) {
	query := "SELECT id, owner_id, name, category, cadence, streak, created_at FROM habits WHERE owner_id = ?"
	args := []any{ownerID}
	if category != "" && category != "all" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *SQLiteStore) DeleteHabit(ctx context.Context, id string) error {
	// Completions go with the habit via ON DELETE CASCADE
	res, err := s.db.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListCompletions(ctx context.Context, habitID string, limit int) ([]models.HabitCompletion, error) {
	query := "SELECT id, habit_id, period_key, note, created_at FROM completions WHERE habit_id = ? ORDER BY created_at DESC, id ASC"
	args := []any{habitID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var completions []models.HabitCompletion
	for rows.Next() {
		var c models.HabitCompletion
		var createdAt string
		if err := rows.Scan(&c.ID, &c.HabitID, &c.PeriodKey, &c.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		c.CreatedAt = parseStoredTime(createdAt)
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

func (s *SQLiteStore) RecordCheckIn(ctx context.Context, c models.HabitCompletion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin check-in: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO completions (id, habit_id, period_key, note, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.HabitID, c.PeriodKey, c.Note, c.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert completion: %w", err)
	}

	res, err := tx.ExecContext(ctx, "UPDATE habits SET streak = streak + 1 WHERE id = ?", c.HabitID)
	if err != nil {
		return fmt.Errorf("failed to increment streak: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to increment streak: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (s *SQLiteStore) LeaderboardTotals(ctx context.Context) ([]models.LeaderboardEntry, error) {
	// Unordered; ranking and the tie-break live in the aggregator.
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, COALESCE(SUM(h.streak), 0), COUNT(h.id)
		FROM users u
		LEFT JOIN habits h ON h.owner_id = u.id
		GROUP BY u.id, u.name, u.email`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute leaderboard totals: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Email, &e.TotalStreak, &e.HabitCount); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *SQLiteStore) RecentCompletionsByOwners(ctx context.Context, ownerIDs []string, limit int) ([]models.FeedEntry, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(ownerIDs)-1) + "?"
	args := make([]any, 0, len(ownerIDs)+1)
	for _, id := range ownerIDs {
		args = append(args, id)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT c.id, c.created_at, c.note, h.name, u.id, u.name, u.email
		FROM completions c
		JOIN habits h ON h.id = c.habit_id
		JOIN users u ON u.id = h.owner_id
		WHERE h.owner_id IN (%s)
		ORDER BY c.created_at DESC, c.id ASC
		LIMIT ?`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity feed: %w", err)
	}
	defer rows.Close()

	var entries []models.FeedEntry
	for rows.Next() {
		var e models.FeedEntry
		var completedAt string
		if err := rows.Scan(&e.CompletionID, &completedAt, &e.Note, &e.HabitName, &e.UserID, &e.UserName, &e.UserEmail); err != nil {
			return nil, fmt.Errorf("failed to scan feed entry: %w", err)
		}
		e.CompletedAt = parseStoredTime(completedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *SQLiteStore) PendingDailyReminders(ctx context.Context, periodKey string) ([]ReminderTarget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.email, u.name, h.name
		FROM habits h
		JOIN users u ON u.id = h.owner_id
		WHERE h.cadence = 'DAILY'
		  AND NOT EXISTS (
			SELECT 1 FROM completions c WHERE c.habit_id = h.id AND c.period_key = ?
		  )
		ORDER BY u.email ASC, h.name ASC`, periodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending reminders: %w", err)
	}
	defer rows.Close()

	var targets []ReminderTarget
	for rows.Next() {
		var t ReminderTarget
		if err := rows.Scan(&t.Email, &t.UserName, &t.HabitName); err != nil {
			return nil, fmt.Errorf("failed to scan reminder target: %w", err)
		}
		targets = append(targets, t)
	}

	return targets, rows.Err()
}

func (s *SQLiteStore) CreateFollow(ctx context.Context, f models.Follow) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)",
		f.FollowerID, f.FolloweeID, f.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM follows WHERE follower_id = ? AND followee_id = ?", followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) FollowExists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?", followerID, followeeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) ListFollowing(ctx context.Context, followerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT followee_id FROM follows WHERE follower_id = ? ORDER BY created_at ASC", followerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan followee: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var cadence, createdAt string
	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Category, &cadence, &h.Streak, &createdAt); err != nil {
		return models.Habit{}, err
	}
	h.Cadence = models.Cadence(cadence)
	h.CreatedAt = parseStoredTime(createdAt)
	return h, nil
}

// parseStoredTime reads an RFC3339 timestamp written by this store. A zero
// time for an unparseable value beats failing the whole query.
func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
