package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/streakd/internal/cli"
	"github.com/julianstephens/streakd/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"Database location: a SQLite file path or a postgres:// DSN." env:"STREAKD_DB" default:"streakd.db"`
	Verbose bool   `help:"Enable debug logging." short:"v"`

	Init   cli.InitCmd   `cmd:"" help:"Initialize storage and apply migrations."`
	Serve  cli.ServeCmd  `cmd:"" help:"Run the HTTP API server." default:"1"`
	Remind cli.RemindCmd `cmd:"" help:"Run one reminder sweep and exit."`
	Seed   cli.SeedCmd   `cmd:"" help:"Load demo users, habits, and check-in history."`
	Backup cli.BackupCmd `cmd:"" help:"Manage database snapshots."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("streakd"),
		kong.Description("Habit tracking service: streaks, check-ins, and a social feed"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var store storage.Provider
	var dbPath string
	if strings.HasPrefix(CLI.DB, "postgres://") || strings.HasPrefix(CLI.DB, "postgresql://") {
		store = storage.NewPostgresStore(CLI.DB)
	} else {
		store = storage.NewSQLiteStore(CLI.DB)
		dbPath = CLI.DB
	}

	appCtx := &cli.Context{
		Store:  store,
		Logger: logger,
		DBPath: dbPath,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
