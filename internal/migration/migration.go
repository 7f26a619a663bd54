// Package migration applies versioned SQL migrations to a database.
// Migration files are named NNN_description.sql and applied in order; the
// current version is tracked in a single-row schema_version table.
package migration

import (
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

type Runner struct {
	db   *sql.DB
	fsys fs.FS
}

// NewRunner creates a runner over fsys, which must contain *.sql files at
// its root (typically an embed.FS sub-tree for one SQL dialect).
func NewRunner(db *sql.DB, fsys fs.FS) *Runner {
	return &Runner{db: db, fsys: fsys}
}

type migrationFile struct {
	version int
	name    string
}

func (r *Runner) listMigrations() ([]migrationFile, error) {
	names, err := fs.Glob(r.fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	var files []migrationFile
	for _, name := range names {
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("invalid migration filename %q: expected NNN_description.sql", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", name, err)
		}
		files = append(files, migrationFile{version: version, name: name})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })

	for i := 1; i < len(files); i++ {
		if files[i].version == files[i-1].version {
			return nil, fmt.Errorf("duplicate migration version %d", files[i].version)
		}
	}

	return files, nil
}

// GetCurrentVersion returns the schema version, 0 for a fresh database.
func (r *Runner) GetCurrentVersion() (int, error) {
	if err := r.ensureVersionTable(); err != nil {
		return 0, err
	}

	var version int
	err := r.db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (r *Runner) ensureVersionTable() error {
	_, err := r.db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)")
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// ApplyMigrations applies all migrations newer than the current version and
// returns how many were applied. Each migration runs in its own transaction
// together with the version bump.
func (r *Runner) ApplyMigrations(logf func(format string, args ...any)) (int, error) {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return 0, err
	}

	files, err := r.listMigrations()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, file := range files {
		if file.version <= current {
			continue
		}

		contents, err := fs.ReadFile(r.fsys, file.name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", file.name, err)
		}

		if err := r.applyOne(file, string(contents)); err != nil {
			return applied, err
		}

		if logf != nil {
			logf("applied migration %s", file.name)
		}
		applied++
	}

	return applied, nil
}

func (r *Runner) applyOne(file migrationFile, contents string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", file.name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(contents); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", file.name, err)
	}

	// Single-row version table; the version value comes from the validated
	// numeric filename prefix, not user input.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("INSERT INTO schema_version (version) VALUES (%d)", file.version)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}

// ValidateVersion checks that the database schema is not newer than the
// migrations this binary ships with.
func (r *Runner) ValidateVersion() error {
	current, err := r.GetCurrentVersion()
	if err != nil {
		return err
	}

	files, err := r.listMigrations()
	if err != nil {
		return err
	}

	latest := 0
	if len(files) > 0 {
		latest = files[len(files)-1].version
	}

	if current > latest {
		return fmt.Errorf("database schema version %d is newer than supported version %d; upgrade the binary", current, latest)
	}
	return nil
}
