package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/streakd/internal/reminder"
)

type RemindCmd struct {
	SMTPHost     string `help:"SMTP host for reminder mail. Reminders are logged when unset." env:"SMTP_HOST"`
	SMTPPort     int    `help:"SMTP port." default:"587" env:"SMTP_PORT"`
	SMTPUsername string `help:"SMTP username." env:"SMTP_USERNAME"`
	SMTPPassword string `help:"SMTP password." env:"SMTP_PASSWORD"`
	SMTPFrom     string `help:"From address on reminder mail." env:"SMTP_FROM"`
}

func (c *RemindCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	cfg := reminder.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
	}
	var notifier reminder.Notifier
	if cfg.Configured() {
		notifier = reminder.NewSMTPNotifier(cfg)
	} else {
		notifier = reminder.NewLogNotifier(ctx.Logger)
	}

	sweeper := reminder.NewSweeper(ctx.Store, notifier, reminder.WithLogger(ctx.Logger))
	summary, err := sweeper.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Reminder sweep complete: %d attempted, %d sent\n", summary.Attempted, summary.Sent)
	for _, r := range summary.Results {
		if r.Sent {
			fmt.Printf("  sent     %s (%s)\n", r.Email, r.HabitName)
		} else {
			fmt.Printf("  failed   %s (%s): %s\n", r.Email, r.HabitName, r.Error)
		}
	}
	return nil
}
