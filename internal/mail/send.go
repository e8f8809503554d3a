package mail

import (
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/insightdelivered/phone-bill-splitter/internal/config"
)

// SendSummary emails the formatted bill summary to the configured recipient
// over SMTP with implicit TLS.
func SendSummary(cfg *config.Config, body string) error {
	if cfg.User == "" || cfg.Password == "" || cfg.Recipient == "" {
		return fmt.Errorf("USER, GAPP_PASSWORD and SUMMARY_EMAIL_RECIPIENT must be set to send the summary")
	}

	msg := gomail.NewMsg()
	if err := msg.From(cfg.User); err != nil {
		return fmt.Errorf("invalid sender %q: %w", cfg.User, err)
	}
	if err := msg.To(cfg.Recipient); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", cfg.Recipient, err)
	}
	msg.Subject(cfg.SummarySubject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(cfg.SMTPHost,
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	slog.Info("sending summary email", "host", cfg.SMTPHost, "to", cfg.Recipient)
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending summary email: %w", err)
	}
	slog.Info("summary email sent")
	return nil
}
