package cli

import (
	"fmt"

	"github.com/julianstephens/streakd/internal/backup"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a snapshot of the database." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available snapshots."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the database from a snapshot."`
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	m, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := m.Create()
	if err != nil {
		return err
	}
	fmt.Printf("Backup created: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	m, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := m.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups found.")
		return nil
	}
	for _, b := range backups {
		fmt.Printf("%s  %8d bytes  %s\n", b.Timestamp.Format("2006-01-02 15:04:05"), b.Size, b.Path)
	}
	return nil
}

type BackupRestoreCmd struct {
	Path string `arg:"" help:"Snapshot file to restore."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	m, err := backupManager(ctx)
	if err != nil {
		return err
	}
	if err := m.Restore(c.Path); err != nil {
		return err
	}
	fmt.Println("Database restored.")
	return nil
}

func backupManager(ctx *Context) (*backup.Manager, error) {
	if ctx.DBPath == "" {
		return nil, fmt.Errorf("backups are only supported for SQLite databases")
	}
	return backup.NewManager(ctx.DBPath), nil
}
