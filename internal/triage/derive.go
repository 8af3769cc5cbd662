package triage

import (
	"time"

	"grovaapp/internal/models"
)

// SubScoreRow is one sub-metric in the breakdown grid
type SubScoreRow struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ActionView is a suggested action with its display values
type ActionView struct {
	models.SuggestedAction
	Icon            string `json:"icon"`
	ConfidenceClass string `json:"confidence_class"`
	ConfidenceLabel string `json:"confidence_label"`
}

// View is a feedback item together with every derived display value
type View struct {
	Item            models.FeedbackItem `json:"item"`
	EffectiveScore  float64             `json:"effective_score"`
	BaseScore       float64             `json:"base_score"`
	SignalCount     int                 `json:"signal_count"`
	ScoreClass      Class               `json:"score_class"`
	ScoreAnchor     string              `json:"score_anchor"`
	SignalBreakdown string              `json:"signal_breakdown,omitempty"`
	TimeAgo         string              `json:"time_ago"`
	Week            string              `json:"week"`
	Badge           Badge               `json:"badge"`
	SubScores       []SubScoreRow       `json:"sub_scores"`
	Actions         []ActionView        `json:"actions"`
}

// Derive computes the View of an item for a project mode. The item is deep
// copied so the caller's value is never shared.
func Derive(item models.FeedbackItem, mode models.Mode, now time.Time) View {
	effective := EffectiveScore(item)
	return View{
		Item:            item.Clone(),
		EffectiveScore:  effective,
		BaseScore:       BaseScore(item),
		SignalCount:     SignalCount(item),
		ScoreClass:      ScoreClass(effective),
		ScoreAnchor:     ScoreAnchor(effective),
		SignalBreakdown: SignalBreakdown(item),
		TimeAgo:         TimeAgo(now, item.CreatedAt),
		Week:            IsoWeek(item.CreatedAt),
		Badge:           CategoryBadge(item.Category()),
		SubScores:       SubScoreRows(item, mode),
		Actions:         ActionViews(item),
	}
}

// DeriveAll derives every item in order
func DeriveAll(items []models.FeedbackItem, mode models.Mode, now time.Time) []View {
	views := make([]View, 0, len(items))
	for _, item := range items {
		views = append(views, Derive(item, mode, now))
	}
	return views
}

// SubScoreRows lists the mode's sub-metrics present on the item, in the
// mode's display order. Metrics the item lacks are skipped.
func SubScoreRows(item models.FeedbackItem, mode models.Mode) []SubScoreRow {
	rows := []SubScoreRow{}
	if item.Triage == nil || len(item.Triage.SubScores) == 0 {
		return rows
	}
	for _, field := range mode.SubScoreFields() {
		if v, ok := item.Triage.SubScores[field.Key]; ok {
			rows = append(rows, SubScoreRow{Key: field.Key, Label: field.Label, Value: v})
		}
	}
	return rows
}

// ActionViews decorates the item's suggested actions in their given order
func ActionViews(item models.FeedbackItem) []ActionView {
	views := []ActionView{}
	if item.Triage == nil {
		return views
	}
	for _, a := range item.Triage.SuggestedActions {
		views = append(views, ActionView{
			SuggestedAction: a.Clone(),
			Icon:            ActionIcon(a.Type),
			ConfidenceClass: ConfidenceClass(a.Confidence),
			ConfidenceLabel: ConfidenceLabel(a.Confidence),
		})
	}
	return views
}
