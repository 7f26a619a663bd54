package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPConfig carries the outbound mail settings, usually bound from the
// environment by the CLI layer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether enough settings are present to attempt SMTP.
func (c SMTPConfig) Configured() bool {
	return c.Host != ""
}

// SMTPNotifier sends reminder mail over plain SMTP.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) SendReminder(ctx context.Context, to, userName, habitName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("Don't forget your habit: %s", habitName)
	body := reminderBody(userName, habitName)

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", to, err)
	}
	return nil
}

func reminderBody(userName, habitName string) string {
	greeting := "Hi there!"
	if userName != "" {
		greeting = fmt.Sprintf("Hi %s!", userName)
	}
	return fmt.Sprintf(
		"%s\r\n\r\nThis is a friendly reminder about your habit: %q\r\n\r\nYou haven't checked in today yet. Keep your streak going!",
		greeting, habitName)
}

// LogNotifier writes reminders to the log instead of sending mail. Used when
// SMTP is not configured, so the sweep stays observable in development.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendReminder(_ context.Context, to, userName, habitName string) error {
	n.logger.Info("reminder (not sent, smtp unconfigured)", "to", to, "user", userName, "habit", habitName)
	return nil
}
