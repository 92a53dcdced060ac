package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hugh/flowboard/pkg/config"
	gomail "github.com/wneessen/go-mail"
)

// Sender delivers account emails. Kept narrow so tests and the worker can
// swap in a recording stub.
type Sender interface {
	SendVerification(ctx context.Context, to, username, verifyURL string) error
}

// SMTPSender delivers mail over SMTP using go-mail.
type SMTPSender struct {
	cfg    *config.MailConfig
	logger *slog.Logger
}

func NewSMTPSender(cfg *config.MailConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) SendVerification(ctx context.Context, to, username, verifyURL string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject("Verify Your Email - Flowboard")
	msg.SetBodyString(gomail.TypeTextPlain, verificationBody(username, verifyURL))

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending verification mail: %w", err)
	}

	s.logger.Info("verification email sent", "to", to)
	return nil
}

func verificationBody(username, verifyURL string) string {
	return fmt.Sprintf(`Hello %s,

Thank you for registering! Please verify your email address by clicking the link below:

%s

This link will expire in 1 hour.

If you didn't create this account, please ignore this email.

Best regards,
Flowboard Team
`, username, verifyURL)
}
