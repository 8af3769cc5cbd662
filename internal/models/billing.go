package models

// Plan tier ids
const (
	TierFree          = "free"
	TierSolo          = "solo"
	TierBuilder       = "builder"
	TierAgency        = "agency"
	TierBizFree       = "biz_free"
	TierBizEssentials = "biz_essentials"
	TierBizGrowth     = "biz_growth"
	TierBizMulti      = "biz_multi"
)

// DefaultFeedbackLimit is the monthly quota assumed when billing status is unknown
const DefaultFeedbackLimit = 50

// Plan change labels
const (
	PlanCurrent   = "Current plan"
	PlanUpgrade   = "Upgrade"
	PlanDowngrade = "Downgrade"
)

// Tier is a display-only plan description
type Tier struct {
	Name     string   `json:"name"`
	Key      string   `json:"key"`
	Price    string   `json:"price"`
	Period   string   `json:"period"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular,omitempty"`
}

var devTiers = []Tier{
	{Name: "Free", Key: TierFree, Price: "$0", Period: "forever",
		Features: []string{"1 project", "50 feedback/mo", "AI triage", "Basic scoring"}},
	{Name: "Solo", Key: TierSolo, Price: "$19", Period: "/month", Popular: true,
		Features: []string{"3 projects", "500 feedback/mo", "AI triage + actions", "Cursor prompts", "Email alerts"}},
	{Name: "Builder", Key: TierBuilder, Price: "$49", Period: "/month",
		Features: []string{"10 projects", "2,000 feedback/mo", "Everything in Solo", "Priority support", "Custom scoring"}},
	{Name: "Agency", Key: TierAgency, Price: "$149", Period: "/month",
		Features: []string{"Unlimited projects", "10,000 feedback/mo", "Everything in Builder", "Team members", "API access", "White-label widgets"}},
}

var bizTiers = []Tier{
	{Name: "Free", Key: TierBizFree, Price: "$0", Period: "forever",
		Features: []string{"1 location", "50 feedback/mo", "AI categorization", "Weekly digest"}},
	{Name: "Essentials", Key: TierBizEssentials, Price: "$19", Period: "/month", Popular: true,
		Features: []string{"1 location", "500 feedback/mo", "Suggested replies", "Trend analysis", "Email alerts"}},
	{Name: "Growth", Key: TierBizGrowth, Price: "$39", Period: "/month",
		Features: []string{"3 locations", "2,000 feedback/mo", "Everything in Essentials", "Custom categories", "Priority support"}},
	{Name: "Multi-location", Key: TierBizMulti, Price: "$99", Period: "/month",
		Features: []string{"Unlimited locations", "10,000 feedback/mo", "Everything in Growth", "Team access", "API access", "Custom integrations"}},
}

var tierOrder = map[string]int{
	TierFree: 0, TierBizFree: 0,
	TierSolo: 1, TierBizEssentials: 1,
	TierBuilder: 2, TierBizGrowth: 2,
	TierAgency: 3, TierBizMulti: 3,
}

// TierOrder ranks a tier id; unknown tiers rank with the free plans
func TierOrder(key string) int {
	return tierOrder[key]
}

// IsPaidTier reports whether key names a paid plan
func IsPaidTier(key string) bool {
	return key != "" && key != TierFree && key != TierBizFree
}

// PlanChangeLabel returns the call to action shown on target given the current plan
func PlanChangeLabel(current, target string) string {
	switch {
	case current == target:
		return PlanCurrent
	case TierOrder(target) > TierOrder(current):
		return PlanUpgrade
	case TierOrder(target) < TierOrder(current):
		return PlanDowngrade
	default:
		// same rank across catalogs, e.g. free vs biz_free
		return PlanCurrent
	}
}

// BillingUsage is the metered feedback usage for the current period
type BillingUsage struct {
	FeedbackCount int `json:"feedback_count"`
	FeedbackLimit int `json:"feedback_limit"`
}

// BillingStatus is the response of GET /billing/status
type BillingStatus struct {
	PlanTier         string       `json:"plan_tier"`
	PlanStatus       string       `json:"plan_status"`
	CurrentPeriodEnd *string      `json:"current_period_end"`
	Usage            BillingUsage `json:"usage"`
}

// UsagePercent returns used/limit as a whole percentage clamped to [0,100]
func (b BillingStatus) UsagePercent() int {
	limit := b.Usage.FeedbackLimit
	if limit <= 0 {
		limit = DefaultFeedbackLimit
	}
	pct := b.Usage.FeedbackCount * 100 / limit
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// PastDue reports whether the subscription needs a payment method update
func (b BillingStatus) PastDue() bool {
	return b.PlanStatus == "past_due"
}

// CheckoutRequest is the body of POST /billing/checkout
type CheckoutRequest struct {
	Tier      string `json:"tier" binding:"required"`
	ProjectID string `json:"projectId" binding:"required"`
}

// PortalRequest is the body of POST /billing/portal
type PortalRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
}

// RedirectResponse carries an opaque payment provider URL
type RedirectResponse struct {
	URL string `json:"url"`
}
