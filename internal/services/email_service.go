// Package services holds the dashboard's business logic: inbox loading and
// derivation, action dispatch, per-project preferences and outbound mail.
package services

import (
	"context"

	"grovaapp/internal/config"
	"grovaapp/internal/observability"
	"grovaapp/internal/services/mailer"
	contextutils "grovaapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/mail.v2"
)

// smtpSender is the part of *mail.Dialer the service uses
type smtpSender interface {
	DialAndSend(m ...*mail.Message) error
}

// EmailService implements mailer.Mailer over SMTP using gomail
type EmailService struct {
	cfg    config.EmailConfig
	logger *observability.Logger
	dialer smtpSender
}

// Ensure EmailService implements the Mailer interface
var _ mailer.Mailer = (*EmailService)(nil)

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg config.EmailConfig, logger *observability.Logger) *EmailService {
	var dialer smtpSender
	if cfg.Enabled && cfg.SMTP.Host != "" {
		d := mail.NewDialer(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
		)
		d.Timeout = config.SMTPDialTimeout
		dialer = d
	}

	return &EmailService{
		cfg:    cfg,
		logger: logger,
		dialer: dialer,
	}
}

// Send delivers msg; a disabled service logs and drops it
func (e *EmailService) Send(ctx context.Context, msg mailer.Message) (err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "SendEmail",
		attribute.String("email.subject", msg.Subject),
	)
	defer observability.FinishSpan(span, &err)

	if !e.IsEnabled() {
		e.logger.Info(ctx, "Email disabled, skipping email send", map[string]interface{}{
			"to":      contextutils.MaskSecret(msg.To),
			"subject": msg.Subject,
		})
		return nil
	}

	if e.dialer == nil {
		return contextutils.ErrorWithContextf("email service not properly configured")
	}
	if !contextutils.IsValidEmail(msg.To) {
		return contextutils.WrapErrorf(contextutils.ErrInvalidFormat, "invalid recipient %q", msg.To)
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", e.cfg.SMTP.FromAddress, e.cfg.SMTP.FromName)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	if err = e.dialer.DialAndSend(m); err != nil {
		e.logger.Error(ctx, "Failed to send email", err, map[string]interface{}{
			"subject": msg.Subject,
		})
		return contextutils.WrapError(err, "failed to send email")
	}

	e.logger.Info(ctx, "Email sent successfully", map[string]interface{}{
		"subject": msg.Subject,
	})
	return nil
}

// IsEnabled returns whether email functionality is enabled
func (e *EmailService) IsEnabled() bool {
	return e.cfg.Enabled && e.cfg.SMTP.Host != ""
}
