// Package mail delivers plain-text emails over SMTP.
package mail

import (
	"context"
	"log/slog"

	"storehub/config"
	"storehub/internal/domain/service"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
)

// sender is the part of *gomail.Client the transport needs.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

type smtpTransport struct {
	client sender
	from   string
	logger *slog.Logger
}

// NewSMTPTransport creates a MailTransport from the mail config section.
func NewSMTPTransport(cfg *config.Config, logger *slog.Logger) (service.MailTransport, error) {
	if cfg.Mail == nil || cfg.Mail.Host == "" {
		return nil, errors.New("mail host is required")
	}
	if cfg.Mail.FromAddress == "" {
		return nil, errors.New("mail from address is required")
	}

	opts := []gomail.Option{gomail.WithTLSPolicy(gomail.NoTLS)}
	if cfg.Mail.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Mail.Port))
	}
	if cfg.Mail.TLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	if cfg.Mail.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Mail.Username),
			gomail.WithPassword(cfg.Mail.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Mail.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smtp client")
	}

	return newSMTPTransport(client, cfg.Mail.FromAddress, logger), nil
}

func newSMTPTransport(client sender, from string, logger *slog.Logger) *smtpTransport {
	return &smtpTransport{client: client, from: from, logger: logger}
}

// Send delivers one plain-text message.
func (t *smtpTransport) Send(ctx context.Context, to, subject, body string) error {
	msg, err := t.buildMessage(to, subject, body)
	if err != nil {
		return err
	}

	if err := t.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to send mail")
	}

	t.logger.DebugContext(ctx, "Mail sent", slog.String("subject", subject))

	return nil
}

func (t *smtpTransport) buildMessage(to, subject, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(t.from); err != nil {
		return nil, errors.Wrap(err, "invalid from address")
	}
	if err := msg.To(to); err != nil {
		return nil, errors.Wrap(err, "invalid recipient address")
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	return msg, nil
}
