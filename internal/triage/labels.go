package triage

import (
	"fmt"
	"math"
	"strings"

	"grovaapp/internal/models"
)

// DefaultActionIcon is shown for action types without a dedicated glyph
const DefaultActionIcon = "⚡"

var actionIcons = map[string]string{
	models.ActionTypeRecoveryEmail:     "💌",
	models.ActionTypeEscalationAlert:   "🚨",
	models.ActionTypeDirectReply:       "💬",
	models.ActionTypeThankYouEmail:     "🙏",
	models.ActionTypeFollowUpReminder:  "⏰",
	models.ActionTypeInternalFlag:      "🚩",
	models.ActionTypeOperationalChange: "⚙️",
}

// ActionIcon returns the glyph for an action type
func ActionIcon(actionType string) string {
	if icon, ok := actionIcons[actionType]; ok {
		return icon
	}
	return DefaultActionIcon
}

// Badge is the display treatment of a category tag
type Badge struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Tone  string `json:"tone"`
}

var categoryBadges = map[string]Badge{
	"bug":             {Label: "Bug", Icon: "🐛", Tone: "red"},
	"feature":         {Label: "Feature", Icon: "✨", Tone: "accent"},
	"feature_request": {Label: "Feature request", Icon: "✨", Tone: "accent"},
	"ux":              {Label: "UX", Icon: "🎨", Tone: "orange"},
	"complaint":       {Label: "Complaint", Icon: "😠", Tone: "red"},
	"praise":          {Label: "Praise", Icon: "💚", Tone: "accent"},
	"compliment":      {Label: "Compliment", Icon: "💚", Tone: "accent"},
	"question":        {Label: "Question", Icon: "❓", Tone: "blue"},
	"suggestion":      {Label: "Suggestion", Icon: "💡", Tone: "blue"},
	"spam":            {Label: "Spam", Icon: "🗑️", Tone: "muted"},
	"other":           {Label: "Other", Icon: "📝", Tone: "muted"},
}

// CategoryBadge returns the badge for a category. Lookup ignores case so
// business categories like "Complaint" match; unknown categories keep their
// own text with a neutral glyph.
func CategoryBadge(category string) Badge {
	key := strings.ToLower(strings.TrimSpace(category))
	if b, ok := categoryBadges[key]; ok {
		return b
	}
	label := strings.TrimSpace(category)
	if label == "" {
		label = "Other"
	}
	return Badge{Label: label, Icon: "📝", Tone: "muted"}
}

var statusStyles = map[models.ActionStatus]string{
	models.ActionSent:      "accent",
	models.ActionDelivered: "accent",
	models.ActionOpened:    "accent-strong",
	models.ActionClicked:   "accent-strong",
	models.ActionDraft:     "muted",
	models.ActionQueued:    "warning",
	models.ActionFailed:    "error",
	models.ActionBounced:   "error",
}

// ActionStatusStyle returns the badge style of a sent action's status
func ActionStatusStyle(status models.ActionStatus) string {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return "muted"
}

// ConfidenceClass buckets an action's confidence: high >= 0.8, medium >= 0.5
func ConfidenceClass(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "high"
	case confidence >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

// ConfidenceLabel renders "92% confident"
func ConfidenceLabel(confidence float64) string {
	if math.IsNaN(confidence) {
		confidence = 0
	}
	return fmt.Sprintf("%d%% confident", int(math.Round(confidence*100)))
}
