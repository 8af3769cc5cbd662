package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"grovaapp/internal/config"
	"grovaapp/internal/demo"
	"grovaapp/internal/models"
	contextutils "grovaapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDemoBackend(t *testing.T) *DemoBackend {
	t.Helper()
	sim, err := demo.NewSimulator(demo.WithClock(func() time.Time {
		return time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return NewDemoBackend(sim)
}

func TestDemoBackend_ServesFixtures(t *testing.T) {
	b := newDemoBackend(t)
	ctx := context.Background()

	assert.Equal(t, NameDemo, b.Name())

	projects, err := b.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	pending, err := b.ListFeedback(ctx, demo.BizProjectID, models.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 5)

	actions, err := b.ListActions(ctx, "db1")
	require.NoError(t, err)
	assert.Empty(t, actions)

	require.NoError(t, b.Approve(ctx, "db1"))
	require.NoError(t, b.Deny(ctx, "db2"))
	require.NoError(t, b.Restore(ctx, "db2"))

	again, err := b.ListFeedback(ctx, demo.BizProjectID, models.StatusPending)
	require.NoError(t, err)
	assert.Len(t, again, 5, "demo transitions are not persisted")
}

func TestDemoBackend_SendAndSettings(t *testing.T) {
	b := newDemoBackend(t)
	ctx := context.Background()

	sent, err := b.SendAction(ctx, models.SendActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.ActionSent, sent.Status)

	draft, err := b.DraftAction(ctx, models.SendActionRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.ActionDraft, draft.Status)

	before, err := b.GetActionSettings(ctx, demo.BizProjectID)
	require.NoError(t, err)
	after, err := b.PutActionSettings(ctx, demo.BizProjectID, models.ActionSettings{Tone: "formal"})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDemoBackend_BillingRedirectsUnsupported(t *testing.T) {
	b := newDemoBackend(t)
	ctx := context.Background()

	status, err := b.BillingStatus(ctx, demo.DevProjectID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, status.PlanTier)

	_, err = b.Checkout(ctx, models.CheckoutRequest{Tier: "pro"})
	assert.True(t, errors.Is(err, contextutils.ErrDemoUnsupported))
	_, err = b.Portal(ctx, models.PortalRequest{ProjectID: demo.DevProjectID})
	assert.True(t, errors.Is(err, contextutils.ErrDemoUnsupported))
}

func TestSelector(t *testing.T) {
	demoBackend := newDemoBackend(t)
	live, err := NewHTTPBackend(configForSelector(), nil, nil)
	require.NoError(t, err)

	s := NewSelector(demoBackend, live, false)
	assert.Equal(t, NameDemo, s.For(true).Name())
	assert.Equal(t, NameHTTP, s.For(false).Name())
	assert.False(t, s.Forced())

	forced := NewSelector(demoBackend, live, true)
	assert.Equal(t, NameDemo, forced.For(false).Name())

	noUpstream := NewSelector(demoBackend, nil, false)
	assert.True(t, noUpstream.Forced())
	assert.Equal(t, NameDemo, noUpstream.For(false).Name())

	demoDisabled := NewSelector(nil, live, true)
	assert.False(t, demoDisabled.Forced())
	assert.Equal(t, NameHTTP, demoDisabled.For(true).Name())
}

func configForSelector() config.UpstreamConfig {
	return config.UpstreamConfig{BaseURL: "http://upstream.invalid"}
}
