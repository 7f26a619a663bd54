package cli

import (
	"fmt"

	"github.com/julianstephens/streakd/internal/reminder"
	"github.com/julianstephens/streakd/internal/server"
	"github.com/julianstephens/streakd/internal/service"
)

type ServeCmd struct {
	Addr       string `help:"Listen address." default:":8080"`
	CronSecret string `help:"Bearer token required by the cron reminder endpoint." env:"CRON_SECRET"`

	SMTPHost     string `help:"SMTP host for reminder mail. Reminders are logged when unset." env:"SMTP_HOST"`
	SMTPPort     int    `help:"SMTP port." default:"587" env:"SMTP_PORT"`
	SMTPUsername string `help:"SMTP username." env:"SMTP_USERNAME"`
	SMTPPassword string `help:"SMTP password." env:"SMTP_PASSWORD"`
	SMTPFrom     string `help:"From address on reminder mail." env:"SMTP_FROM"`
}

func (c *ServeCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	inv := service.InvalidatorFunc(func(scope string) {
		ctx.Logger.Debug("view invalidated", "scope", scope)
	})
	svc := service.New(ctx.Store, service.WithLogger(ctx.Logger), service.WithInvalidator(inv))
	sweeper := reminder.NewSweeper(ctx.Store, c.notifier(ctx), reminder.WithLogger(ctx.Logger))

	srv := server.New(svc, sweeper, ctx.Logger, c.CronSecret)
	ctx.Logger.Info("listening", "addr", c.Addr)
	if err := srv.Router().Run(c.Addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func (c *ServeCmd) notifier(ctx *Context) reminder.Notifier {
	cfg := reminder.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
	}
	if cfg.Configured() {
		return reminder.NewSMTPNotifier(cfg)
	}
	return reminder.NewLogNotifier(ctx.Logger)
}
