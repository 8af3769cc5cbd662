package services

import (
	"testing"

	"grovaapp/internal/config"
	"grovaapp/internal/observability"

	"github.com/stretchr/testify/assert"
)

func TestCreateEmailService_TestMode_Factory(t *testing.T) {
	cfg := &config.Config{IsTest: true}

	service := CreateEmailService(cfg, observability.NewNopLogger())

	assert.IsType(t, &TestEmailService{}, service)
	assert.True(t, service.IsEnabled())
}

func TestCreateEmailService_ProductionMode_Factory(t *testing.T) {
	cfg := &config.Config{
		Email: config.EmailConfig{
			Enabled: true,
			SMTP:    config.SMTPConfig{Host: "smtp.example.com", Port: 587},
		},
	}

	service := CreateEmailService(cfg, observability.NewNopLogger())

	assert.IsType(t, &EmailService{}, service)
	assert.True(t, service.IsEnabled())
}

func TestCreateEmailService_Disabled(t *testing.T) {
	service := CreateEmailService(&config.Config{}, observability.NewNopLogger())

	assert.IsType(t, &EmailService{}, service)
	assert.False(t, service.IsEnabled())
}
