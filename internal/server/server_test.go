package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakd/internal/models"
	"github.com/julianstephens/streakd/internal/reminder"
	"github.com/julianstephens/streakd/internal/server"
	"github.com/julianstephens/streakd/internal/service"
	"github.com/julianstephens/streakd/internal/storage"
)

const testCronSecret = "cron-secret"

type silentNotifier struct{ sent int }

func (n *silentNotifier) SendReminder(context.Context, string, string, string) error {
	n.sent++
	return nil
}

func setupTestServer(t *testing.T) (*gin.Engine, *silentNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, u := range []struct{ id, name, email string }{
		{"u1", "Alice", "alice@example.com"},
		{"u2", "Bob", "bob@example.com"},
	} {
		require.NoError(t, store.CreateUser(ctx, models.User{
			ID: u.id, Name: u.name, Email: u.email, CreatedAt: time.Now(),
		}))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store, service.WithLogger(logger))
	notifier := &silentNotifier{}
	sweeper := reminder.NewSweeper(store, notifier, reminder.WithLogger(logger))

	srv := server.New(svc, sweeper, logger, testCronSecret)
	return srv.Router(), notifier
}

func doJSON(t *testing.T, router *gin.Engine, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if actor != "" {
		req.Header.Set(server.IdentityHeader, actor)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/habits", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHabitLifecycle(t *testing.T) {
	router, _ := setupTestServer(t)

	// Create.
	w := doJSON(t, router, http.MethodPost, "/api/habits", "u1", map[string]any{
		"name": "Meditate", "category": "health", "cadence": "DAILY",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	habitID := decode(t, w)["id"].(string)
	require.NotEmpty(t, habitID)

	// Duplicate name is a conflict.
	w = doJSON(t, router, http.MethodPost, "/api/habits", "u1", map[string]any{
		"name": "Meditate", "category": "health", "cadence": "DAILY",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Validation failure surfaces the first violated rule.
	w = doJSON(t, router, http.MethodPost, "/api/habits", "u1", map[string]any{
		"name": "x", "category": "health", "cadence": "DAILY",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name must be at least 2 characters", decode(t, w)["error"])

	// Check in, then again in the same period.
	w = doJSON(t, router, http.MethodPost, "/api/habits/"+habitID+"/checkin", "u1", map[string]any{"note": "calm"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/habits/"+habitID+"/checkin", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// List shows the streak and the checked-in flag.
	w = doJSON(t, router, http.MethodGet, "/api/habits", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	habits := decode(t, w)["habits"].([]any)
	require.Len(t, habits, 1)
	habit := habits[0].(map[string]any)
	assert.Equal(t, float64(1), habit["streak"])
	assert.Equal(t, true, habit["checked_in_this_period"])

	// A non-owner sees 404, never 403.
	w = doJSON(t, router, http.MethodDelete, "/api/habits/"+habitID, "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/habits/"+habitID, "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFollowEndpoints(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/users/u1/follow", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you cannot follow yourself", decode(t, w)["error"])

	w = doJSON(t, router, http.MethodPost, "/api/users/u2/follow", "u1", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/users/u2/follow", "u1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/users/u2/follow", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["following"])

	w = doJSON(t, router, http.MethodDelete, "/api/users/u2/follow", "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/users/u2/follow", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedAndLeaderboard(t *testing.T) {
	router, _ := setupTestServer(t)

	// Bob builds some history.
	w := doJSON(t, router, http.MethodPost, "/api/habits", "u2", map[string]any{
		"name": "Run", "category": "fitness", "cadence": "DAILY",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	habitID := decode(t, w)["id"].(string)
	w = doJSON(t, router, http.MethodPost, "/api/habits/"+habitID+"/checkin", "u2", map[string]any{"note": "5k"})
	require.Equal(t, http.StatusOK, w.Code)

	// Alice follows no one: empty feed, no error.
	w = doJSON(t, router, http.MethodGet, "/api/feed", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["feed"])

	// After following Bob the completion shows up enriched.
	w = doJSON(t, router, http.MethodPost, "/api/users/u2/follow", "u1", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/feed", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode(t, w)["feed"].([]any)
	require.Len(t, feed, 1)
	entry := feed[0].(map[string]any)
	assert.Equal(t, "Run", entry["habit_name"])
	assert.Equal(t, "Bob", entry["user_name"])
	assert.Equal(t, "5k", entry["note"])

	// Leaderboard ranks Bob over Alice.
	w = doJSON(t, router, http.MethodGet, "/api/leaderboard", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode(t, w)["leaderboard"].([]any)
	require.Len(t, board, 2)
	first := board[0].(map[string]any)
	assert.Equal(t, "u2", first["user_id"])
	assert.Equal(t, float64(1), first["total_streak"])
}

func TestSearchEndpoint(t *testing.T) {
	router, _ := setupTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/users/search?q=a", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["users"], "single-character query returns nothing")

	w = doJSON(t, router, http.MethodGet, "/api/users/search?q=al", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode(t, w)["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].(map[string]any)["name"])
}

func TestCronRemindersEndpoint(t *testing.T) {
	router, notifier := setupTestServer(t)

	// Pending habit for the sweep.
	w := doJSON(t, router, http.MethodPost, "/api/habits", "u1", map[string]any{
		"name": "Meditate", "category": "health", "cadence": "DAILY",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Wrong or missing secret is rejected.
	req := httptest.NewRequest(http.MethodGet, "/api/cron/reminders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/cron/reminders", nil)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, float64(1), out["attempted"])
	assert.Equal(t, float64(1), out["sent"])
	assert.Equal(t, 1, notifier.sent)
}
