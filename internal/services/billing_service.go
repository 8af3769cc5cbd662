package services

import (
	"context"

	"grovaapp/internal/backend"
	"grovaapp/internal/models"
	"grovaapp/internal/observability"
)

// TierOption is a plan card with its call to action for the current plan
type TierOption struct {
	models.Tier
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

// BillingOverview is the billing page: status, usage and the plan cards
type BillingOverview struct {
	Status       models.BillingStatus `json:"status"`
	UsagePercent int                  `json:"usage_percent"`
	PastDue      bool                 `json:"past_due"`
	Paid         bool                 `json:"paid"`
	Tiers        []TierOption         `json:"tiers"`
}

// BillingService assembles the billing view. Checkout and portal calls go
// straight to the backend.
type BillingService struct {
	logger *observability.Logger
}

// NewBillingService creates a new BillingService instance
func NewBillingService(logger *observability.Logger) *BillingService {
	return &BillingService{logger: logger}
}

// Overview returns the project's billing status with the tier catalog of its mode
func (s *BillingService) Overview(ctx context.Context, be backend.Backend, project models.Project) (result0 BillingOverview, err error) {
	ctx, span := observability.TraceServiceFunction(ctx, "BillingOverview",
		observability.AttributeProjectID(project.ID),
		observability.AttributeMode(project.Mode),
	)
	defer observability.FinishSpan(span, &err)

	status, err := be.BillingStatus(ctx, project.ID)
	if err != nil {
		return BillingOverview{}, err
	}
	if status.PlanTier == "" {
		status.PlanTier = project.Mode.FreeTier()
	}

	return BillingOverview{
		Status:       status,
		UsagePercent: status.UsagePercent(),
		PastDue:      status.PastDue(),
		Paid:         models.IsPaidTier(status.PlanTier),
		Tiers:        TierOptions(project.Mode, status.PlanTier),
	}, nil
}

// TierOptions labels every tier of mode relative to current
func TierOptions(mode models.Mode, current string) []TierOption {
	tiers := mode.Tiers()
	out := make([]TierOption, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, TierOption{
			Tier:    t,
			Label:   models.PlanChangeLabel(current, t.Key),
			Current: t.Key == current,
		})
	}
	return out
}
