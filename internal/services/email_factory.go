package services

import (
	"context"

	"grovaapp/internal/config"
	"grovaapp/internal/observability"
	"grovaapp/internal/services/mailer"
)

// CreateEmailService creates an appropriate email service based on configuration
// If the application is running in test mode, it returns a TestEmailService
// Otherwise, it returns the regular EmailService
func CreateEmailService(cfg *config.Config, logger *observability.Logger) mailer.Mailer {
	if cfg.IsTest {
		logger.Info(context.Background(), "Using test email service", map[string]interface{}{
			"test_mode": true,
		})
		return NewTestEmailService(cfg.Email, logger)
	}

	return NewEmailService(cfg.Email, logger)
}
