package models

import (
	"encoding/json"
	"testing"

	contextutils "grovaapp/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeBusiness, ParseMode("business"))
	assert.Equal(t, ModeBusiness, ParseMode(" Business "))
	assert.Equal(t, ModeDeveloper, ParseMode("developer"))
	assert.Equal(t, ModeDeveloper, ParseMode(""))
	assert.Equal(t, ModeDeveloper, ParseMode("enterprise"))
}

func TestMode_UnmarshalJSON(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","mode":"business"}`), &p))
	assert.Equal(t, ModeBusiness, p.Mode)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"p2","mode":"something-new"}`), &p))
	assert.Equal(t, ModeDeveloper, p.Mode)
}

func TestMode_Variants(t *testing.T) {
	dev := ModeDeveloper.SubScoreFields()
	biz := ModeBusiness.SubScoreFields()

	assert.Len(t, dev, 8)
	assert.Len(t, biz, 11)
	assert.Equal(t, "severity", dev[0].Key)
	assert.Equal(t, "customer_retention_signal", biz[len(biz)-1].Key)

	// returned slices are copies
	dev[0].Key = "mutated"
	assert.Equal(t, "severity", ModeDeveloper.SubScoreFields()[0].Key)

	assert.Equal(t, TrackDev, ModeDeveloper.Track())
	assert.Equal(t, TrackBiz, ModeBusiness.Track())
	assert.Equal(t, ModeBusiness, ModeForTrack(TrackBiz))
	assert.Nil(t, ModeDeveloper.DefaultCategories())
	assert.Equal(t, []string{"Complaint", "Compliment", "Question", "Suggestion", "Other"}, ModeBusiness.DefaultCategories())
	assert.Equal(t, TierBizFree, ModeBusiness.FreeTier())
	assert.Equal(t, TierAgency, ModeDeveloper.Tiers()[3].Key)
}

func TestDefaultSource(t *testing.T) {
	assert.Equal(t, "corner-bistro", DefaultSource("Corner Bistro"))
	assert.Equal(t, "acme-saas-app", DefaultSource("  Acme   SaaS app "))
}

func TestFeedbackItem_Clone(t *testing.T) {
	item := FeedbackItem{
		ID:     "db1",
		Status: StatusPending,
		Triage: &Triage{
			Score:       8.7,
			SignalCount: IntPtr(2),
			SubScores:   map[string]float64{"severity": 0.8},
			SuggestedActions: []SuggestedAction{{
				Type:              ActionTypeRecoveryEmail,
				TemplateID:        StringPtr("recovery"),
				TemplateVariables: map[string]string{"customer_name": "Sarah"},
			}},
		},
		ConsoleErrors: []ConsoleError{{Message: "boom", Col: IntPtr(3)}},
	}

	clone := item.Clone()
	*clone.Triage.SignalCount = 9
	clone.Triage.SubScores["severity"] = 0.1
	clone.Triage.SuggestedActions[0].TemplateVariables["customer_name"] = "X"
	*clone.Triage.SuggestedActions[0].TemplateID = "other"
	*clone.ConsoleErrors[0].Col = 99

	assert.Equal(t, 2, *item.Triage.SignalCount)
	assert.Equal(t, 0.8, item.Triage.SubScores["severity"])
	assert.Equal(t, "Sarah", item.Triage.SuggestedActions[0].TemplateVariables["customer_name"])
	assert.Equal(t, "recovery", *item.Triage.SuggestedActions[0].TemplateID)
	assert.Equal(t, 3, *item.ConsoleErrors[0].Col)
}

func TestFeedbackItem_Helpers(t *testing.T) {
	item := FeedbackItem{Type: "bug"}
	assert.Equal(t, "bug", item.Category())
	assert.False(t, item.NeedsReply())

	item.Triage = &Triage{Category: "complaint", SuggestedReply: "Sorry!"}
	item.Status = StatusPending
	assert.Equal(t, "complaint", item.Category())
	assert.True(t, item.NeedsReply())

	item.Status = StatusApproved
	assert.False(t, item.NeedsReply())
}

func TestSuggestedAction_HasTemplate(t *testing.T) {
	assert.False(t, SuggestedAction{}.HasTemplate())
	assert.False(t, SuggestedAction{TemplateID: StringPtr("")}.HasTemplate())
	assert.True(t, SuggestedAction{TemplateID: StringPtr("recovery")}.HasTemplate())
}

func TestSuggestedAction_NullTemplateRoundTrip(t *testing.T) {
	var a SuggestedAction
	require.NoError(t, json.Unmarshal([]byte(`{"type":"internal_flag","confidence":0.7,"headline":"Flag","template_id":null}`), &a))
	assert.Nil(t, a.TemplateID)

	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"template_id":null`)
}

func TestBizConfig_AddCategory(t *testing.T) {
	cfg := DefaultBizConfig()

	updated, err := cfg.AddCategory("  Parking ")
	require.NoError(t, err)
	assert.Equal(t, "Parking", updated.Categories[len(updated.Categories)-1])
	assert.Len(t, cfg.Categories, 5, "original must not change")

	_, err = updated.AddCategory("Parking")
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordExists))

	_, err = updated.AddCategory("   ")
	assert.True(t, contextutils.IsError(err, contextutils.ErrMissingRequired))
}

func TestBizConfig_RemoveAndMove(t *testing.T) {
	cfg := BizConfig{Type: BusinessTypeDefault, Categories: []string{"A", "B", "C", "D"}}

	removed, err := cfg.RemoveCategory(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D"}, removed.Categories)
	assert.Equal(t, []string{"A", "B", "C", "D"}, cfg.Categories)

	_, err = cfg.RemoveCategory(4)
	assert.Error(t, err)

	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"B", "C", "A", "D"}},
		{3, 0, []string{"D", "A", "B", "C"}},
		{1, 1, []string{"A", "B", "C", "D"}},
		{2, 3, []string{"A", "B", "D", "C"}},
	}
	for _, tt := range tests {
		moved, err := cfg.MoveCategory(tt.from, tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, moved.Categories, "move %d->%d", tt.from, tt.to)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, cfg.Categories)

	_, err = cfg.MoveCategory(-1, 2)
	assert.Error(t, err)
}

func TestBizConfig_Presets(t *testing.T) {
	cfg := DefaultBizConfig().WithType(BusinessTypeRestaurant)
	assert.Equal(t, BusinessTypeRestaurant, cfg.Type)
	assert.Contains(t, cfg.Categories, "Food quality")

	custom, err := cfg.AddCategory("Parking")
	require.NoError(t, err)
	assert.Equal(t, PresetCategories(BusinessTypeRestaurant), custom.ResetCategories().Categories)

	assert.Equal(t, PresetCategories(BusinessTypeDefault), PresetCategories("spaceport"))
}

func TestBizConfig_EmbedSnippet(t *testing.T) {
	p := Project{ID: "demo-biz", Source: "corner-bistro", APIKey: "demo"}
	cfg := BizConfig{Name: `Joe's "Best" Bistro`, Type: BusinessTypeRestaurant, Categories: []string{"Food quality", "Service"}}

	expected := "<script\n" +
		"  src=\"https://grova.dev/grova-business-widget.js\"\n" +
		"  data-source=\"corner-bistro\"\n" +
		"  data-key=\"demo\"\n" +
		"  data-business-type=\"restaurant\"\n" +
		"  data-name=\"Joe's &quot;Best&quot; Bistro\"\n" +
		"  data-categories=\"Food quality,Service\">\n" +
		"</script>"
	assert.Equal(t, expected, cfg.EmbedSnippet(p))

	minimal := BizConfig{Type: BusinessTypeDefault}.EmbedSnippet(Project{})
	assert.Equal(t, "<script\n  src=\"https://grova.dev/grova-business-widget.js\"\n  data-source=\"your-business-id\">\n</script>", minimal)
}

func TestPlanChangeLabel(t *testing.T) {
	assert.Equal(t, PlanCurrent, PlanChangeLabel(TierSolo, TierSolo))
	assert.Equal(t, PlanUpgrade, PlanChangeLabel(TierFree, TierBuilder))
	assert.Equal(t, PlanDowngrade, PlanChangeLabel(TierAgency, TierSolo))
	assert.Equal(t, PlanUpgrade, PlanChangeLabel(TierBizFree, TierBizGrowth))
	assert.Equal(t, PlanUpgrade, PlanChangeLabel("unknown", TierBizEssentials))
	assert.True(t, IsPaidTier(TierBizMulti))
	assert.False(t, IsPaidTier(TierBizFree))
	assert.False(t, IsPaidTier(""))
}

func TestBillingStatus_UsagePercent(t *testing.T) {
	assert.Equal(t, 50, BillingStatus{Usage: BillingUsage{FeedbackCount: 25, FeedbackLimit: 50}}.UsagePercent())
	assert.Equal(t, 100, BillingStatus{Usage: BillingUsage{FeedbackCount: 80, FeedbackLimit: 50}}.UsagePercent())
	assert.Equal(t, 20, BillingStatus{Usage: BillingUsage{FeedbackCount: 10}}.UsagePercent())
	assert.True(t, BillingStatus{PlanStatus: "past_due"}.PastDue())
}

func TestActionSettings_Validation(t *testing.T) {
	s := DefaultActionSettings("demo-biz")
	s.OwnerName = StringPtr("Demo Owner")
	require.NoError(t, contextutils.ValidateStruct(s))

	bad := s.Clone()
	bad.BrandColor = "green"
	bad.ReplyToEmail = StringPtr("not-an-email")
	bad.Tone = "shouty"
	err := contextutils.ValidateStruct(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brand_color")
	assert.Contains(t, err.Error(), "reply_to_email")
	assert.Contains(t, err.Error(), "tone")
}

func TestActionSettings_Normalize(t *testing.T) {
	s := DefaultActionSettings("p")
	s.ReviewURL = StringPtr("")
	s.FollowUpDelayDays = 0
	s.BrandColor = ""

	n := s.Normalize()
	assert.Nil(t, n.ReviewURL)
	assert.Equal(t, 7, n.FollowUpDelayDays)
	assert.Equal(t, DefaultBrandColor, n.BrandColor)
	assert.NotNil(t, s.ReviewURL, "input must not change")
	assert.Equal(t, "The team", n.SenderName())
}

func TestFontScaleFor(t *testing.T) {
	assert.Equal(t, 0.88, FontScaleFor(-4))
	assert.Equal(t, 1.0, FontScaleFor(FontPresetNormal))
	assert.Equal(t, 1.28, FontScaleFor(12))
}
