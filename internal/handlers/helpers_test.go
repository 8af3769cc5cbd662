package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"grovaapp/internal/backend"
	"grovaapp/internal/config"
	"grovaapp/internal/database"
	"grovaapp/internal/demo"
	"grovaapp/internal/middleware"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	"grovaapp/internal/services"
	contextutils "grovaapp/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLiveBackend stands in for the HTTP backend. Calls not set up on the
// mock fall through to the embedded demo backend.
type MockLiveBackend struct {
	*backend.DemoBackend
	mock.Mock
}

func (m *MockLiveBackend) Name() string { return backend.NameHTTP }

func (m *MockLiveBackend) ListProjects(ctx context.Context) ([]models.Project, error) {
	args := m.Called(contextutils.GetBearerTokenFromContext(ctx))
	projects, _ := args.Get(0).([]models.Project)
	return projects, args.Error(1)
}

func (m *MockLiveBackend) Approve(ctx context.Context, feedbackID string) error {
	args := m.Called(contextutils.GetBearerTokenFromContext(ctx), feedbackID)
	return args.Error(0)
}

type testEnv struct {
	router *gin.Engine
	mailer *services.TestEmailService
	live   *MockLiveBackend
	// cookies carries the session between requests
	cookies []*http.Cookie
}

func newDemoBackend(t *testing.T) *backend.DemoBackend {
	t.Helper()
	sim, err := demo.NewSimulator()
	require.NoError(t, err)
	return backend.NewDemoBackend(sim)
}

// newTestEnv builds the full router. With withLive the session defaults to
// the mocked live backend; otherwise every session is pinned to the demo.
func newTestEnv(t *testing.T, withLive bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.IsTest = true
	cfg.Server.ValidateResponses = true

	logger := observability.NewNopLogger()
	demoBackend := newDemoBackend(t)

	env := &testEnv{}
	var live backend.Backend
	if withLive {
		env.live = &MockLiveBackend{DemoBackend: newDemoBackend(t)}
		live = env.live
	}
	selector := backend.NewSelector(demoBackend, live, false)

	schemas, err := middleware.LoadEmbeddedSchemas()
	require.NoError(t, err)

	env.mailer = services.NewTestEmailService(cfg.Email, logger)
	store := database.NewMemoryStore()
	settings := services.NewSettingsService(logger)
	actions := services.NewActionService(cfg.Actions, logger, nil)

	env.router = NewRouter(cfg, Services{
		Selector:       selector,
		Feedback:       services.NewFeedbackService(logger, nil),
		Actions:        actions,
		Settings:       settings,
		Billing:        services.NewBillingService(logger),
		Templates:      services.NewTemplateService(env.mailer, actions, logger),
		BizConfig:      services.NewBizConfigService(store, logger),
		ProjectContext: services.NewProjectContextService(store),
		AppState:       services.NewAppStateService(store, logger, selector.Forced()),
		Schemas:        schemas,
	}, logger)
	return env
}

// do sends a request, keeping the session cookie across calls
func (e *testEnv) do(t *testing.T, method, target string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		e.cookies = cookies
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
