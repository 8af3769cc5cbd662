package services

import (
	"context"
	"testing"
	"time"

	"grovaapp/internal/backend"
	"grovaapp/internal/demo"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 2, 4, 15, 30, 0, 0, time.UTC)

// createTestLogger creates a logger for testing
func createTestLogger() *observability.Logger {
	return observability.NewNopLogger()
}

func newDemoBackend(t *testing.T) *backend.DemoBackend {
	t.Helper()
	sim, err := demo.NewSimulator(demo.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return backend.NewDemoBackend(sim)
}

func newFeedbackService() *FeedbackService {
	s := NewFeedbackService(createTestLogger(), nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

// MockBackend overrides selected calls of an embedded demo backend
type MockBackend struct {
	*backend.DemoBackend
	mock.Mock
}

func newMockBackend(t *testing.T) *MockBackend {
	return &MockBackend{DemoBackend: newDemoBackend(t)}
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) ListFeedback(ctx context.Context, projectID string, status models.FeedbackStatus) ([]models.FeedbackItem, error) {
	args := m.Called(ctx, projectID, status)
	items, _ := args.Get(0).([]models.FeedbackItem)
	return items, args.Error(1)
}

func (m *MockBackend) Approve(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) Deny(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) SendAction(ctx context.Context, req models.SendActionRequest) (models.SendActionResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(models.SendActionResponse)
	return resp, args.Error(1)
}

func (m *MockBackend) PutActionSettings(ctx context.Context, projectID string, settings models.ActionSettings) (models.ActionSettings, error) {
	args := m.Called(ctx, projectID, settings)
	out, _ := args.Get(0).(models.ActionSettings)
	return out, args.Error(1)
}

func item(id, createdAt string, status models.FeedbackStatus) models.FeedbackItem {
	return models.FeedbackItem{ID: id, Type: "bug", Message: id, CreatedAt: createdAt, Status: status}
}
