package providers

import (
	"fmt"

	"merchant-backoffice/internal/config"
	"merchant-backoffice/internal/models"
	"merchant-backoffice/pkg/email"
)

// SendEmail delivers an email message over the configured SMTP relay.
func SendEmail(msg models.Message, cfg config.Config) error {
	if msg.Recipient == "" {
		return fmt.Errorf("email message has no recipient")
	}
	if cfg.Email.SMTPServer == "" || cfg.Email.SMTPPort == 0 || cfg.Email.Username == "" {
		return fmt.Errorf("missing Email configuration: SMTPServer, SMTPPort, or Username is empty")
	}

	from := cfg.Email.FromAddress
	if from == "" {
		from = cfg.Email.Username
	}
	if cfg.Email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.Email.FromName, from)
	}

	err := email.Send(
		cfg.Email.SMTPServer,
		cfg.Email.SMTPPort,
		cfg.Email.Username,
		cfg.Email.Password,
		from,
		msg.Recipient,
		msg.Subject,
		msg.Body,
		msg.HTML,
	)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.Recipient, err)
	}
	return nil
}
