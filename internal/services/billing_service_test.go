package services

import (
	"context"
	"testing"

	"grovaapp/internal/demo"
	"grovaapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingService_Overview_Demo(t *testing.T) {
	s := NewBillingService(createTestLogger())
	be := newDemoBackend(t)
	fs := newFeedbackService()

	project, err := fs.ResolveProject(context.Background(), be, demo.BizProjectID)
	require.NoError(t, err)

	view, err := s.Overview(context.Background(), be, project)
	require.NoError(t, err)

	assert.Equal(t, models.TierBizFree, view.Status.PlanTier)
	assert.False(t, view.Paid)
	assert.False(t, view.PastDue)
	assert.Equal(t, 10, view.UsagePercent)
	require.Len(t, view.Tiers, 4)
	assert.True(t, view.Tiers[0].Current)
	assert.Equal(t, models.PlanCurrent, view.Tiers[0].Label)
	assert.Equal(t, models.PlanUpgrade, view.Tiers[1].Label)
}

func TestTierOptions(t *testing.T) {
	opts := TierOptions(models.ModeDeveloper, models.TierBuilder)
	require.Len(t, opts, 4)

	labels := []string{opts[0].Label, opts[1].Label, opts[2].Label, opts[3].Label}
	assert.Equal(t, []string{models.PlanDowngrade, models.PlanDowngrade, models.PlanCurrent, models.PlanUpgrade}, labels)
	assert.True(t, opts[2].Current)
}
