package services

import (
	"context"
	"sync"

	"grovaapp/internal/config"
	"grovaapp/internal/observability"
	"grovaapp/internal/services/mailer"
)

// TestEmailService implements the Mailer interface for test mode.
// It never dials SMTP; messages are logged and kept in memory.
type TestEmailService struct {
	cfg    config.EmailConfig
	logger *observability.Logger

	mu   sync.Mutex
	sent []mailer.Message
}

// NewTestEmailService creates a new TestEmailService instance
func NewTestEmailService(cfg config.EmailConfig, logger *observability.Logger) *TestEmailService {
	return &TestEmailService{
		cfg:    cfg,
		logger: logger,
	}
}

// Send records the message instead of delivering it
func (e *TestEmailService) Send(ctx context.Context, msg mailer.Message) error {
	e.mu.Lock()
	e.sent = append(e.sent, msg)
	e.mu.Unlock()

	e.logger.Info(ctx, "TEST MODE: Would send email", map[string]interface{}{
		"to":        msg.To,
		"subject":   msg.Subject,
		"test_mode": true,
	})
	return nil
}

// Sent returns a copy of every recorded message in send order
func (e *TestEmailService) Sent() []mailer.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]mailer.Message(nil), e.sent...)
}

// IsEnabled always reports true so callers exercise the send path
func (e *TestEmailService) IsEnabled() bool {
	return true
}
