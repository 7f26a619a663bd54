package cli

import (
	"log/slog"

	"github.com/julianstephens/streakd/internal/storage"
)

// Context carries the shared dependencies every command runs against.
// DBPath is set only when the store is a local SQLite file.
type Context struct {
	Store  storage.Provider
	Logger *slog.Logger
	DBPath string
}
