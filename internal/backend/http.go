package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"grovaapp/internal/config"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// maxErrorBody caps how much of an upstream error body is kept for details
const maxErrorBody = 4 << 10

// HTTPBackend calls the feedback API. The caller's bearer token is read from
// the context and forwarded untouched. Idempotent calls are retried with
// exponential backoff and a circuit breaker sheds load while the API is down.
type HTTPBackend struct {
	baseURL       *url.URL
	client        *http.Client
	breaker       *circuitBreaker
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	logger        *observability.Logger
	metrics       *observability.Metrics
}

// NewHTTPBackend creates a client for cfg.BaseURL. A zero breaker threshold
// disables the circuit breaker.
func NewHTTPBackend(cfg config.UpstreamConfig, logger *observability.Logger, metrics *observability.Metrics) (*HTTPBackend, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityError,
			"invalid upstream base url", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	var breaker *circuitBreaker
	if cfg.CircuitBreakerThreshold > 0 {
		breaker = newCircuitBreaker(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerTimeout)
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	return &HTTPBackend{
		baseURL: base,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker:       breaker,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    cfg.RetryDelay,
		maxRetryDelay: config.MaxRetryDelay,
		logger:        logger,
		metrics:       metrics,
	}, nil
}

func (b *HTTPBackend) Name() string { return NameHTTP }

func (b *HTTPBackend) ListProjects(ctx context.Context) ([]models.Project, error) {
	out := []models.Project{}
	if err := b.do(ctx, http.MethodGet, "/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (b *HTTPBackend) CreateProject(ctx context.Context, req models.CreateProjectRequest) (models.Project, error) {
	var out models.Project
	err := b.do(ctx, http.MethodPost, "/projects", nil, req, &out)
	return out, err
}

func (b *HTTPBackend) ListFeedback(ctx context.Context, projectID string, status models.FeedbackStatus) ([]models.FeedbackItem, error) {
	query := url.Values{"project_id": {projectID}}
	if status != "" {
		query.Set("status", string(status))
	}
	var out []models.FeedbackItem
	if err := b.do(ctx, http.MethodGet, "/feedback", query, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (b *HTTPBackend) Approve(ctx context.Context, feedbackID string) error {
	return b.transition(ctx, feedbackID, "approve")
}

func (b *HTTPBackend) Deny(ctx context.Context, feedbackID string) error {
	return b.transition(ctx, feedbackID, "deny")
}

func (b *HTTPBackend) Restore(ctx context.Context, feedbackID string) error {
	return b.transition(ctx, feedbackID, "restore")
}

func (b *HTTPBackend) transition(ctx context.Context, feedbackID, verb string) error {
	var ack models.AckResponse
	path := "/feedback/" + url.PathEscape(feedbackID) + "/" + verb
	if err := b.do(ctx, http.MethodPost, path, nil, struct{}{}, &ack); err != nil {
		return err
	}
	if !ack.Success {
		return contextutils.WrapErrorf(contextutils.ErrUpstreamFailed, "%s of %s was not acknowledged", verb, feedbackID)
	}
	return nil
}

func (b *HTTPBackend) ListActions(ctx context.Context, feedbackID string) ([]models.SentAction, error) {
	var out []models.SentAction
	if err := b.do(ctx, http.MethodGet, "/actions", url.Values{"feedback_id": {feedbackID}}, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (b *HTTPBackend) SendAction(ctx context.Context, req models.SendActionRequest) (models.SendActionResponse, error) {
	var out models.SendActionResponse
	err := b.do(ctx, http.MethodPost, "/actions/send", nil, req, &out)
	return out, err
}

func (b *HTTPBackend) DraftAction(ctx context.Context, req models.SendActionRequest) (models.SendActionResponse, error) {
	var out models.SendActionResponse
	err := b.do(ctx, http.MethodPost, "/actions/draft", nil, req, &out)
	return out, err
}

func (b *HTTPBackend) GetActionSettings(ctx context.Context, projectID string) (models.ActionSettings, error) {
	var out models.ActionSettings
	err := b.do(ctx, http.MethodGet, settingsPath(projectID), nil, nil, &out)
	return out, err
}

func (b *HTTPBackend) PutActionSettings(ctx context.Context, projectID string, settings models.ActionSettings) (models.ActionSettings, error) {
	var out models.ActionSettings
	err := b.do(ctx, http.MethodPut, settingsPath(projectID), nil, settings, &out)
	return out, err
}

func (b *HTTPBackend) BillingStatus(ctx context.Context, projectID string) (models.BillingStatus, error) {
	var out models.BillingStatus
	err := b.do(ctx, http.MethodGet, "/billing/status", url.Values{"projectId": {projectID}}, nil, &out)
	return out, err
}

func (b *HTTPBackend) Checkout(ctx context.Context, req models.CheckoutRequest) (models.RedirectResponse, error) {
	var out models.RedirectResponse
	err := b.do(ctx, http.MethodPost, "/billing/checkout", nil, req, &out)
	return out, err
}

func (b *HTTPBackend) Portal(ctx context.Context, req models.PortalRequest) (models.RedirectResponse, error) {
	var out models.RedirectResponse
	err := b.do(ctx, http.MethodPost, "/billing/portal", nil, req, &out)
	return out, err
}

func settingsPath(projectID string) string {
	return "/projects/" + url.PathEscape(projectID) + "/action-settings"
}

// do performs one logical call, retrying idempotent methods, and decodes a
// 2xx JSON body into out.
func (b *HTTPBackend) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (err error) {
	ctx, span := observability.TraceBackendFunction(ctx, "do",
		attribute.String("http.method", method),
		attribute.String("upstream.path", path),
	)
	defer observability.FinishSpan(span, &err)

	if !b.breaker.canExecute() {
		return contextutils.NewAppError(contextutils.ErrorCodeServiceUnavailable, contextutils.SeverityWarn,
			"Feedback API temporarily unavailable", "circuit open after repeated failures")
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return contextutils.WrapError(err, "failed to encode upstream request")
		}
	}

	target := *b.baseURL
	target.Path = b.baseURL.Path + path
	target.RawQuery = query.Encode()

	attempts := 1
	if isIdempotent(method) {
		attempts += b.maxRetries
	}

	delay := b.retryDelay
	for attempt := 1; ; attempt++ {
		var status int
		status, err = b.attempt(ctx, method, target.String(), payload, out)
		if err == nil {
			b.breaker.recordSuccess()
			return nil
		}
		if status == 0 || status >= 500 {
			b.breaker.recordFailure()
		} else {
			// any other response means the upstream is reachable
			b.breaker.recordSuccess()
		}
		b.metrics.RecordUpstreamError(ctx, method, status)

		if attempt >= attempts || !retryableStatus(status) || ctx.Err() != nil || !b.breaker.canExecute() {
			return err
		}

		b.logger.Warn(ctx, "retrying upstream call", map[string]interface{}{
			"method":  method,
			"path":    path,
			"status":  status,
			"attempt": attempt,
		})
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay *= 2
		if delay > b.maxRetryDelay {
			delay = b.maxRetryDelay
		}
	}
}

// attempt sends a single request. The returned status is 0 when no response
// was received.
func (b *HTTPBackend) attempt(ctx context.Context, method, target string, payload []byte, out interface{}) (int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, contextutils.WrapError(err, "failed to build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := contextutils.GetBearerTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, contextutils.WrapErrorf(contextutils.ErrUpstreamFailed, "%s %s: %v", method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, statusError(method, req.URL.Path, resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return resp.StatusCode, contextutils.WrapErrorf(contextutils.ErrUpstreamResponseInvalid, "%s %s: %v", method, req.URL.Path, err)
	}
	return resp.StatusCode, nil
}

// statusError maps an upstream status to an application error, keeping the
// upstream's message as details.
func statusError(method, path string, status int, body []byte) error {
	details := upstreamMessage(body)
	if details == "" {
		details = http.StatusText(status)
	}

	var kind *contextutils.AppError
	switch {
	case status == http.StatusUnauthorized:
		kind = contextutils.ErrUnauthorized
	case status == http.StatusForbidden:
		kind = contextutils.ErrForbidden
	case status == http.StatusNotFound:
		kind = contextutils.ErrRecordNotFound
	case status == http.StatusConflict:
		kind = contextutils.ErrConflict
	case status == http.StatusTooManyRequests:
		kind = contextutils.ErrRateLimit
	case status == http.StatusPaymentRequired:
		kind = contextutils.ErrQuotaExceeded
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		kind = contextutils.ErrTimeout
	case status >= 400 && status < 500:
		kind = contextutils.ErrInvalidInput
	default:
		kind = contextutils.ErrUpstreamFailed
	}
	return contextutils.NewAppErrorWithCause(kind.Code, kind.Severity,
		fmt.Sprintf("%s %s returned %d", method, path, status), details, kind)
}

// upstreamMessage pulls "error" or "message" out of a JSON error body
func upstreamMessage(body []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// retryableStatus reports whether a failed attempt may succeed on retry
func retryableStatus(status int) bool {
	return status == 0 || status >= 500 || status == http.StatusTooManyRequests || status == http.StatusRequestTimeout
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
