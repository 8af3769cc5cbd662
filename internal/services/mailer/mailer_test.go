package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// MockMailer implements Mailer for testing
type MockMailer struct {
	Sent            []Message
	IsEnabledResult bool
}

func (m *MockMailer) Send(_ context.Context, msg Message) error {
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockMailer) IsEnabled() bool {
	return m.IsEnabledResult
}

func TestMailerInterface_Implementation(t *testing.T) {
	var _ Mailer = (*MockMailer)(nil)

	m := &MockMailer{IsEnabledResult: true}
	assert.True(t, m.IsEnabled())

	err := m.Send(context.Background(), Message{To: "owner@example.com", Subject: "Hi"})
	assert.NoError(t, err)
	assert.Len(t, m.Sent, 1)
	assert.Equal(t, "owner@example.com", m.Sent[0].To)
}

func TestTestSubject(t *testing.T) {
	assert.Equal(t, "[Test] We're sorry, Jane", TestSubject("We're sorry, Jane"))
	assert.Equal(t, "[Test] Already marked", TestSubject("[Test] Already marked"))
	assert.Equal(t, "[Test] ", TestSubject(""))
}
