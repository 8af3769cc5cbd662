package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"grovaapp/internal/config"
	"grovaapp/internal/models"
	contextutils "grovaapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.UpstreamConfig)) *HTTPBackend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.UpstreamConfig{
		BaseURL:    server.URL + "/api",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	b, err := NewHTTPBackend(cfg, nil, nil)
	require.NoError(t, err)
	return b
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewHTTPBackend_InvalidURL(t *testing.T) {
	_, err := NewHTTPBackend(config.UpstreamConfig{BaseURL: "not a url"}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeInvalidInput, contextutils.GetErrorCode(err))
}

func TestHTTPBackend_ListFeedback_ForwardsTokenAndQuery(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/feedback", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("project_id"))
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, []models.FeedbackItem{{ID: "f1", Status: models.StatusPending}})
	})

	ctx := contextutils.WithBearerToken(context.Background(), "tok-123")
	items, err := b.ListFeedback(ctx, "p1", models.StatusPending)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "f1", items[0].ID)
}

func TestHTTPBackend_NoTokenNoHeader(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, "null")
	})

	items, err := b.ListFeedback(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHTTPBackend_RetriesIdempotentCalls(t *testing.T) {
	var calls int32
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(t, w, http.StatusServiceUnavailable, map[string]string{"error": "warming up"})
			return
		}
		writeJSON(t, w, http.StatusOK, []models.Project{{ID: "p1"}})
	})

	projects, err := b.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPBackend_RetriesExhausted(t *testing.T) {
	var calls int32
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(t, w, http.StatusBadGateway, map[string]string{"message": "bad gateway"})
	})

	_, err := b.ListProjects(context.Background())
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeUpstreamFailed, contextutils.GetErrorCode(err))
	assert.Contains(t, err.Error(), "bad gateway")
	assert.True(t, contextutils.IsRetryable(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPBackend_DoesNotRetryPost(t *testing.T) {
	var calls int32
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := b.SendAction(context.Background(), models.SendActionRequest{FeedbackID: "f1"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPBackend_ClientErrorsNotRetried(t *testing.T) {
	cases := map[int]contextutils.ErrorCode{
		http.StatusUnauthorized:        contextutils.ErrorCodeUnauthorized,
		http.StatusForbidden:           contextutils.ErrorCodeForbidden,
		http.StatusNotFound:            contextutils.ErrorCodeRecordNotFound,
		http.StatusUnprocessableEntity: contextutils.ErrorCodeInvalidInput,
		http.StatusPaymentRequired:     contextutils.ErrorCodeQuotaExceeded,
		http.StatusConflict:            contextutils.ErrorCodeConflict,
	}
	for status, code := range cases {
		var calls int32
		b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			writeJSON(t, w, status, map[string]string{"error": "nope"})
		})

		_, err := b.GetActionSettings(context.Background(), "p1")
		require.Error(t, err, status)
		assert.Equal(t, code, contextutils.GetErrorCode(err), status)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), status)
	}
}

func TestHTTPBackend_StatusErrorsMatchSentinels(t *testing.T) {
	cases := map[int]*contextutils.AppError{
		http.StatusForbidden:       contextutils.ErrForbidden,
		http.StatusConflict:        contextutils.ErrConflict,
		http.StatusPaymentRequired: contextutils.ErrQuotaExceeded,
		http.StatusGatewayTimeout:  contextutils.ErrTimeout,
		http.StatusBadGateway:      contextutils.ErrUpstreamFailed,
	}
	for status, sentinel := range cases {
		b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, status, map[string]string{"error": "nope"})
		}, func(cfg *config.UpstreamConfig) {
			cfg.MaxRetries = 0
		})

		_, err := b.ListProjects(context.Background())
		require.Error(t, err, status)
		assert.True(t, errors.Is(err, sentinel), status)
		assert.Contains(t, err.Error(), "nope", status)
	}
}

func TestHTTPBackend_InvalidResponse(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	})

	_, err := b.BillingStatus(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeUpstreamResponseInvalid, contextutils.GetErrorCode(err))
}

func TestHTTPBackend_Transitions(t *testing.T) {
	var paths []string
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
		writeJSON(t, w, http.StatusOK, models.AckResponse{Success: r.URL.Path != "/api/feedback/f3/restore"})
	})

	ctx := context.Background()
	require.NoError(t, b.Approve(ctx, "f1"))
	require.NoError(t, b.Deny(ctx, "f2"))
	err := b.Restore(ctx, "f3")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeUpstreamFailed, contextutils.GetErrorCode(err))

	assert.Equal(t, []string{"/api/feedback/f1/approve", "/api/feedback/f2/deny", "/api/feedback/f3/restore"}, paths)
}

func TestHTTPBackend_PutActionSettings(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/projects/p1/action-settings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got models.ActionSettings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "formal", got.Tone)
		got.ProjectID = "p1"
		writeJSON(t, w, http.StatusOK, got)
	})

	saved, err := b.PutActionSettings(context.Background(), "p1", models.ActionSettings{Tone: "formal"})
	require.NoError(t, err)
	assert.Equal(t, "p1", saved.ProjectID)
}

func TestHTTPBackend_SendAndBilling(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/actions/draft":
			var req models.SendActionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "recovery", req.TemplateID)
			id := "a1"
			writeJSON(t, w, http.StatusOK, models.SendActionResponse{Success: true, ActionID: &id, Status: models.ActionDraft})
		case "/api/billing/checkout":
			writeJSON(t, w, http.StatusOK, models.RedirectResponse{URL: "https://pay.example/session"})
		case "/api/billing/status":
			assert.Equal(t, "p1", r.URL.Query().Get("projectId"))
			writeJSON(t, w, http.StatusOK, models.BillingStatus{PlanTier: "pro", PlanStatus: "active"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()
	resp, err := b.DraftAction(ctx, models.SendActionRequest{FeedbackID: "f1", TemplateID: "recovery"})
	require.NoError(t, err)
	assert.Equal(t, models.ActionDraft, resp.Status)

	redirect, err := b.Checkout(ctx, models.CheckoutRequest{Tier: "pro", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session", redirect.URL)

	status, err := b.BillingStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "pro", status.PlanTier)
}

func TestHTTPBackend_CircuitBreakerSheds(t *testing.T) {
	var calls int32
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *config.UpstreamConfig) {
		cfg.MaxRetries = 0
		cfg.CircuitBreakerThreshold = 2
		cfg.CircuitBreakerTimeout = time.Hour
	})

	ctx := context.Background()
	_, err := b.ListProjects(ctx)
	require.Error(t, err)
	_, err = b.ListProjects(ctx)
	require.Error(t, err)

	_, err = b.ListProjects(ctx)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeServiceUnavailable, contextutils.GetErrorCode(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPBackend_CircuitClosesAfterClientError(t *testing.T) {
	var calls int32
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
		default:
			writeJSON(t, w, http.StatusOK, []models.Project{})
		}
	}, func(cfg *config.UpstreamConfig) {
		cfg.MaxRetries = 0
		cfg.CircuitBreakerThreshold = 1
		cfg.CircuitBreakerTimeout = time.Minute
	})
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	b.breaker.now = func() time.Time { return now }

	ctx := context.Background()
	_, err := b.ListProjects(ctx)
	require.Error(t, err)
	assert.Equal(t, circuitOpen, b.breaker.current())

	now = now.Add(2 * time.Minute)
	_, err = b.ListProjects(ctx)
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeUnauthorized, contextutils.GetErrorCode(err))
	assert.Equal(t, circuitClosed, b.breaker.current())

	projects, err := b.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPBackend_CircuitClosesAfterUndecodableBody(t *testing.T) {
	var calls int32
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "{not json")
	}, func(cfg *config.UpstreamConfig) {
		cfg.MaxRetries = 0
		cfg.CircuitBreakerThreshold = 1
		cfg.CircuitBreakerTimeout = time.Minute
	})
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	b.breaker.now = func() time.Time { return now }

	ctx := context.Background()
	_, err := b.ListProjects(ctx)
	require.Error(t, err)

	now = now.Add(2 * time.Minute)
	_, err = b.ListProjects(ctx)
	require.Error(t, err)
	assert.Equal(t, circuitClosed, b.breaker.current())
}

func TestHTTPBackend_ContextCanceled(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *config.UpstreamConfig) {
		cfg.RetryDelay = time.Hour
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := b.ListProjects(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
