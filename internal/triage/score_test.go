package triage

import (
	"math"
	"testing"

	"grovaapp/internal/models"

	"github.com/stretchr/testify/assert"
)

func scored(score float64, signals int) models.FeedbackItem {
	return models.FeedbackItem{ID: "x", Triage: &models.Triage{Score: score, SignalCount: models.IntPtr(signals)}}
}

func TestBaseScore(t *testing.T) {
	assert.Equal(t, DefaultScore, BaseScore(models.FeedbackItem{}))
	assert.Equal(t, 6.1, BaseScore(scored(6.1, 1)))
	assert.Equal(t, DefaultScore, BaseScore(scored(math.NaN(), 1)))
	assert.Equal(t, MaxScore, BaseScore(scored(14, 1)))
	assert.Equal(t, MinScore, BaseScore(scored(-2, 1)))
}

func TestSignalCount(t *testing.T) {
	assert.Equal(t, 1, SignalCount(models.FeedbackItem{}))
	assert.Equal(t, 1, SignalCount(models.FeedbackItem{Triage: &models.Triage{Score: 3}}))
	assert.Equal(t, 1, SignalCount(scored(3, 0)))
	assert.Equal(t, 1, SignalCount(scored(3, -4)))
	assert.Equal(t, 3, SignalCount(scored(3, 3)))
}

func TestEffectiveScore_NonDecreasingAndBounded(t *testing.T) {
	for _, base := range []float64{0, 1.5, 5, 6.1, 7.99, 9.2, 10, 12, -1} {
		prev := -1.0
		for n := 1; n <= 200; n++ {
			item := scored(base, n)
			es := EffectiveScore(item)
			assert.GreaterOrEqual(t, es, prev, "base %.2f n=%d", base, n)
			assert.LessOrEqual(t, es, MaxScore, "base %.2f n=%d", base, n)
			assert.GreaterOrEqual(t, es, BaseScore(item), "base %.2f n=%d", base, n)
			if prev < MaxScore && n > 1 {
				assert.Greater(t, es, prev, "strictly increasing below the ceiling")
			}
			prev = es
		}
	}
}

func TestEffectiveScore_Untriaged(t *testing.T) {
	item := models.FeedbackItem{ID: "new"}
	assert.Equal(t, DefaultScore, EffectiveScore(item))
	assert.Equal(t, BaseScore(item), EffectiveScore(item))
}

func TestEffectiveScore_Scenarios(t *testing.T) {
	t.Run("single signal has no boost", func(t *testing.T) {
		item := scored(6.1, 1)
		assert.Equal(t, 6.1, BaseScore(item))
		assert.Equal(t, 6.1, EffectiveScore(item))
		assert.Equal(t, ClassMid, ScoreClass(EffectiveScore(item)))
	})

	t.Run("merged signals boost and saturate", func(t *testing.T) {
		item := scored(9.2, 3)
		es := EffectiveScore(item)
		assert.Greater(t, es, 9.2)
		assert.LessOrEqual(t, es, 10.0)
		assert.Equal(t, ClassHigh, ScoreClass(es))
	})

	t.Run("two signals", func(t *testing.T) {
		assert.InDelta(t, 8.3, EffectiveScore(scored(7.8, 2)), 1e-9)
	})
}

func TestScoreClass_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Class
	}{
		{-3, ClassLow},
		{0, ClassLow},
		{4.999, ClassLow},
		{5, ClassMid},
		{5.001, ClassMid},
		{7.999, ClassMid},
		{8, ClassHigh},
		{8.001, ClassHigh},
		{10, ClassHigh},
		{math.NaN(), ClassLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreClass(tt.score), "score %v", tt.score)
	}
}

func TestScoreClass_Partition(t *testing.T) {
	// every point of the range lands in exactly one bucket, and buckets are ordered
	prev := ClassLow
	rank := map[Class]int{ClassLow: 0, ClassMid: 1, ClassHigh: 2}
	for s := 0.0; s <= 10.0; s += 0.01 {
		c := ScoreClass(s)
		assert.Contains(t, []Class{ClassLow, ClassMid, ClassHigh}, c)
		assert.GreaterOrEqual(t, rank[c], rank[prev])
		prev = c
	}
}

func TestScoreAnchor(t *testing.T) {
	assert.Equal(t, "Needs attention", ScoreAnchor(9.2))
	assert.Equal(t, "Worth a look", ScoreAnchor(5))
	assert.Equal(t, "Low priority", ScoreAnchor(1.5))
}

func TestSignalBreakdown(t *testing.T) {
	assert.Equal(t, "", SignalBreakdown(scored(6.1, 1)))
	assert.Equal(t, "Base 7.8 + 1 signal", SignalBreakdown(scored(7.8, 2)))
	assert.Equal(t, "Base 9.2 + 2 signals", SignalBreakdown(scored(9.2, 3)))
}
