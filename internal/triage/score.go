// Package triage derives everything the dashboard displays from a stored
// feedback item: boosted scores, severity buckets, labels, icons, relative
// times and weekly aggregates. Every function is pure and total.
package triage

import (
	"fmt"
	"math"

	"grovaapp/internal/models"
)

const (
	// DefaultScore stands in for items that have not been triaged yet: the
	// midpoint of the nominal range, so they sort as "worth a look".
	DefaultScore = 5.0
	// MaxScore is the ceiling of the nominal range
	MaxScore = 10.0
	// MinScore is the floor of the nominal range
	MinScore = 0.0
	// SignalBoost is added per corroborating signal beyond the first
	SignalBoost = 0.5

	// MidThreshold is the lowest score classed mid
	MidThreshold = 5.0
	// HighThreshold is the lowest score classed high
	HighThreshold = 8.0
)

// Class is a three-bucket severity classification
type Class string

// Severity classes
const (
	ClassLow  Class = "low"
	ClassMid  Class = "mid"
	ClassHigh Class = "high"
)

var anchors = map[Class]string{
	ClassHigh: "Needs attention",
	ClassMid:  "Worth a look",
	ClassLow:  "Low priority",
}

// BaseScore returns the triage score clamped into [0,10], or DefaultScore
// when the item is untriaged or the score is NaN.
func BaseScore(item models.FeedbackItem) float64 {
	if item.Triage == nil || math.IsNaN(item.Triage.Score) {
		return DefaultScore
	}
	return clamp(item.Triage.Score)
}

// SignalCount returns how many merged signals back the item, at least 1
func SignalCount(item models.FeedbackItem) int {
	if item.Triage == nil || item.Triage.SignalCount == nil || *item.Triage.SignalCount < 1 {
		return 1
	}
	return *item.Triage.SignalCount
}

// EffectiveScore boosts the base score by SignalBoost per extra signal and
// saturates at MaxScore. With one signal it equals BaseScore.
func EffectiveScore(item models.FeedbackItem) float64 {
	return Boost(BaseScore(item), SignalCount(item))
}

// Boost applies the signal boost curve to a base score
func Boost(base float64, signals int) float64 {
	if signals < 1 {
		signals = 1
	}
	return math.Min(MaxScore, base+SignalBoost*float64(signals-1))
}

// ScoreClass buckets a score: below 5 low, below 8 mid, otherwise high.
// Threshold values land in the higher bucket; NaN is low.
func ScoreClass(score float64) Class {
	switch {
	case score >= HighThreshold:
		return ClassHigh
	case score >= MidThreshold:
		return ClassMid
	default:
		return ClassLow
	}
}

// ScoreAnchor returns the human label for the score's class
func ScoreAnchor(score float64) string {
	return anchors[ScoreClass(score)]
}

// FormatScore renders a score with one decimal
func FormatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}

// SignalBreakdown renders "Base 6.1 + 2 signals", or "" for a single signal
func SignalBreakdown(item models.FeedbackItem) string {
	extra := SignalCount(item) - 1
	if extra < 1 {
		return ""
	}
	return fmt.Sprintf("Base %s + %d %s", FormatScore(BaseScore(item)), extra, plural(extra, "signal", "signals"))
}

func clamp(score float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, score))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
