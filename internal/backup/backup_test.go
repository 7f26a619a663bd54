package backup

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "streakd.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE habits (id TEXT PRIMARY KEY, streak INTEGER)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO habits VALUES ('h1', 5)`); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}
	return dbPath
}

func readStreak(t *testing.T, dbPath string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var streak int
	if err := db.QueryRow("SELECT streak FROM habits WHERE id = 'h1'").Scan(&streak); err != nil {
		t.Fatalf("failed to read streak: %v", err)
	}
	return streak
}

func setStreak(t *testing.T, dbPath string, streak int) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("UPDATE habits SET streak = ? WHERE id = 'h1'", streak); err != nil {
		t.Fatalf("failed to update streak: %v", err)
	}
}

func TestCreateAndList(t *testing.T) {
	dbPath := setupDB(t)
	m := NewManager(dbPath)

	path, err := m.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := readStreak(t, path); got != 5 {
		t.Errorf("snapshot streak = %d, want 5", got)
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if backups[0].Path != path {
		t.Errorf("listed path = %s, want %s", backups[0].Path, path)
	}
	if backups[0].Size == 0 {
		t.Error("listed backup has zero size")
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent.db"))
	if _, err := m.Create(); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestListEmpty(t *testing.T) {
	m := NewManager(setupDB(t))
	backups, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestSameSecondSnapshotsGetUniqueNames(t *testing.T) {
	m := NewManager(setupDB(t))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		path, err := m.Create()
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate snapshot path %s", path)
		}
		seen[path] = true
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(backups))
	}
}

func TestRotation(t *testing.T) {
	m := NewManager(setupDB(t))

	for i := 0; i < MaxBackups+3; i++ {
		if _, err := m.Create(); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	backups, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) > MaxBackups {
		t.Errorf("expected at most %d backups after rotation, got %d", MaxBackups, len(backups))
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupDB(t)
	m := NewManager(dbPath)

	snapshot, err := m.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	setStreak(t, dbPath, 99)
	if got := readStreak(t, dbPath); got != 99 {
		t.Fatalf("precondition failed, streak = %d", got)
	}

	if err := m.Restore(snapshot); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := readStreak(t, dbPath); got != 5 {
		t.Errorf("restored streak = %d, want 5", got)
	}
}

func TestRestoreMissingFile(t *testing.T) {
	m := NewManager(setupDB(t))

	if err := m.Restore(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error for missing backup file")
	}
}
