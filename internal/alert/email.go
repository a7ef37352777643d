package alert

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/config"
)

// Mailer sends one plain-text email.
type Mailer interface {
	Send(ctx context.Context, to string, msg Message) error
}

// SMTPMailer delivers through an SMTP relay using go-mail.
type SMTPMailer struct {
	cfg config.EmailConfig
}

// NewSMTPMailer creates a mailer from the alerts.email config section.
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send dials the relay, sends msg to the given address, and hangs up.
// A connection per alert is fine at intrusion-alert volume.
func (m *SMTPMailer) Send(ctx context.Context, to string, msg Message) error {
	email := mail.NewMsg()
	if err := email.From(m.cfg.From); err != nil {
		return fmt.Errorf("%w: invalid from address: %w", ErrEmailFailed, err)
	}
	if err := email.To(to); err != nil {
		return fmt.Errorf("%w: invalid recipient: %w", ErrEmailFailed, err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Body)

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmailFailed, err)
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("%w: %w", ErrEmailFailed, err)
	}
	return nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(m.cfg.Port)}

	if m.cfg.TLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	}

	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}
