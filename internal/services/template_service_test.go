package services

import (
	"context"
	"errors"
	"testing"

	"grovaapp/internal/config"
	"grovaapp/internal/models"
	"grovaapp/internal/services/mailer"
	"grovaapp/internal/templates"
	contextutils "grovaapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMailer is a mock implementation of the Mailer interface for testing
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMailer) IsEnabled() bool {
	return m.Called().Bool(0)
}

func TestTemplateService_List(t *testing.T) {
	s := NewTemplateService(nil, nil, createTestLogger())
	assert.Len(t, s.List(), len(templates.All()))
}

func TestTemplateService_Preview(t *testing.T) {
	s := NewTemplateService(nil, nil, createTestLogger())
	settings := models.DefaultActionSettings("p1")
	settings.OwnerName = models.StringPtr("Maria")

	preview, err := s.Preview(context.Background(), templates.Recovery, map[string]string{
		"customer_name": "Jane",
		"business_name": "Corner Bistro",
	}, settings)
	require.NoError(t, err)

	assert.Equal(t, "We're sorry, Jane", preview.Subject)
	assert.Contains(t, preview.Body, "Maria")
	assert.Contains(t, preview.HTML, "Corner Bistro")
	assert.Contains(t, preview.PlainText, "Subject: We're sorry, Jane")
	assert.Contains(t, preview.Missing, "issue_summary")
	assert.NotContains(t, preview.Missing, "sender_name")
}

func TestTemplateService_Preview_UnknownTemplate(t *testing.T) {
	s := NewTemplateService(nil, nil, createTestLogger())

	_, err := s.Preview(context.Background(), "nope", nil, models.DefaultActionSettings("p1"))
	assert.True(t, errors.Is(err, contextutils.ErrTemplateNotFound))
}

func TestTemplateService_TestSend(t *testing.T) {
	m := &MockMailer{}
	s := NewTemplateService(m, nil, createTestLogger())
	settings := models.DefaultActionSettings("p1")
	settings.ReplyToEmail = models.StringPtr("owner@bistro.com")

	m.On("IsEnabled").Return(true)
	m.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
		return msg.To == "me@bistro.com" &&
			msg.ReplyTo == "owner@bistro.com" &&
			msg.Subject == "[Test] Thank you from Corner Bistro!" &&
			msg.HTML != "" && msg.Text != ""
	})).Return(nil)

	err := s.TestSend(context.Background(), templates.ThankYouReview, TestSendRequest{
		To:        "me@bistro.com",
		Variables: map[string]string{"business_name": "Corner Bistro"},
	}, settings)
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestTemplateService_TestSend_Errors(t *testing.T) {
	ctx := context.Background()
	settings := models.DefaultActionSettings("p1")

	disabled := &MockMailer{}
	disabled.On("IsEnabled").Return(false)
	err := NewTemplateService(disabled, nil, createTestLogger()).TestSend(ctx, templates.Recovery, TestSendRequest{To: "me@example.com"}, settings)
	assert.Equal(t, contextutils.ErrorCodeServiceUnavailable, contextutils.GetErrorCode(err))

	enabled := &MockMailer{}
	enabled.On("IsEnabled").Return(true)
	s := NewTemplateService(enabled, nil, createTestLogger())

	err = s.TestSend(ctx, templates.Recovery, TestSendRequest{To: "not-an-email"}, settings)
	assert.Equal(t, contextutils.ErrorCodeValidationFailed, contextutils.GetErrorCode(err))

	err = s.TestSend(ctx, "nope", TestSendRequest{To: "me@example.com"}, settings)
	assert.Equal(t, contextutils.ErrorCodeTemplateNotFound, contextutils.GetErrorCode(err))
	enabled.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestTemplateService_TestSendThroughTestMailer(t *testing.T) {
	recorder := NewTestEmailService(config.EmailConfig{}, createTestLogger())
	s := NewTemplateService(recorder, nil, createTestLogger())

	err := s.TestSend(context.Background(), templates.EscalationInternal, TestSendRequest{
		To:        "me@example.com",
		Variables: map[string]string{"severity": "Critical", "category": "Bug", "feedback_id": "dd1"},
	}, models.DefaultActionSettings("p1"))
	require.NoError(t, err)

	sent := recorder.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "[Test] [Critical] Bug escalation: dd1", sent[0].Subject)
}

func TestTemplateService_TestSendSharesSendBudget(t *testing.T) {
	recorder := NewTestEmailService(config.EmailConfig{}, createTestLogger())
	actions := newActionService(60, 1)
	s := NewTemplateService(recorder, actions, createTestLogger())
	req := TestSendRequest{To: "me@example.com", Variables: map[string]string{"customer_name": "Jane"}}
	settings := models.DefaultActionSettings("p1")

	require.NoError(t, s.TestSend(context.Background(), templates.Recovery, req, settings))

	err := s.TestSend(context.Background(), templates.Recovery, req, settings)
	assert.Equal(t, contextutils.ErrorCodeRateLimit, contextutils.GetErrorCode(err))
	assert.Len(t, recorder.Sent(), 1)

	// the action sender draws on the same budget
	assert.Error(t, actions.AllowSend(context.Background(), "action:test"))
}

func TestBrandingFor(t *testing.T) {
	settings := models.DefaultActionSettings("p1")
	settings.LogoURL = models.StringPtr("https://bistro.com/logo.png")

	b := BrandingFor(settings)
	assert.Equal(t, models.DefaultBrandColor, b.BrandColor)
	assert.Equal(t, "https://bistro.com/logo.png", b.LogoURL)
	assert.Equal(t, "The team", b.SenderName)
}
