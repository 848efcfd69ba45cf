package mailer

import (
	"context"
	"fmt"
	"log/slog"

	mail "github.com/wneessen/go-mail"

	"github.com/stagnes/parish-hub/pkg/config"
)

// Mailer delivers notification email. A non-nil error is treated as a hard
// delivery failure by callers, which roll back any enclosing transaction.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends mail over plain SMTP (Mailtrap sandbox in development).
type SMTPMailer struct {
	client *mail.Client
	from   string
	logger *slog.Logger
}

func NewSMTPMailer(cfg *config.SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
		logger: logger,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("email delivery failed", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("sending email to %s: %w", to, err)
	}

	m.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

var _ Mailer = (*SMTPMailer)(nil)
