package triage

import (
	"fmt"
	"time"

	"grovaapp/internal/models"
	contextutils "grovaapp/internal/utils"
)

// RecurringMinCount is how often a category must appear, across at least
// two ISO weeks, before it is called a recurring theme.
const RecurringMinCount = 3

// IsoWeek returns the ISO 8601 week ("2026-W03") of a timestamp, computed in
// UTC so the same instant always lands in the same week. Unparseable input
// yields "".
func IsoWeek(iso string) string {
	ts, ok := contextutils.ParseTimestamp(iso)
	if !ok {
		return ""
	}
	return isoWeekOf(ts)
}

func isoWeekOf(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Summary holds the overview metrics for a project's feedback
type Summary struct {
	Total            int    `json:"total"`
	ThisWeek         int    `json:"this_week"`
	ThisMonth        int    `json:"this_month"`
	TopCategory      string `json:"top_category"`
	TopCategoryCount int    `json:"top_category_count"`
	NeedsReply       int    `json:"needs_reply"`
	NeedsAttention   int    `json:"needs_attention"`
}

// Summarize computes overview metrics relative to now. The top category is
// the most frequent submission type this week; ties go to the type seen first.
func Summarize(items []models.FeedbackItem, now time.Time) Summary {
	currentWeek := isoWeekOf(now)
	nowUTC := now.UTC()

	s := Summary{Total: len(items)}
	weekTypes := newCounter()
	for _, item := range items {
		ts, ok := contextutils.ParseTimestamp(item.CreatedAt)
		if ok && isoWeekOf(ts) == currentWeek {
			s.ThisWeek++
			if item.Type != "" {
				weekTypes.add(item.Type)
			}
		}
		if ok && ts.UTC().Year() == nowUTC.Year() && ts.UTC().Month() == nowUTC.Month() {
			s.ThisMonth++
		}
		if item.NeedsReply() {
			s.NeedsReply++
		}
		if item.Status == models.StatusPending && ScoreClass(EffectiveScore(item)) == ClassHigh {
			s.NeedsAttention++
		}
	}
	s.TopCategory, s.TopCategoryCount = weekTypes.top()
	return s
}

// BuildInsightLines returns short plain-language observations about items,
// which are expected newest first. Category ties resolve to the category that
// appears earliest in items, so recency wins. An empty input yields no lines.
func BuildInsightLines(items []models.FeedbackItem, now time.Time) []string {
	if len(items) == 0 {
		return nil
	}

	currentWeek := isoWeekOf(now)
	weekCats := newCounter()
	allCats := newCounter()
	catWeeks := map[string]map[string]struct{}{}
	thisWeek, needsReply, attention := 0, 0, 0

	for _, item := range items {
		cat := item.Category()
		week := IsoWeek(item.CreatedAt)
		if week != "" && week == currentWeek {
			thisWeek++
			if cat != "" {
				weekCats.add(cat)
			}
		}
		if cat != "" {
			allCats.add(cat)
			if week != "" {
				if catWeeks[cat] == nil {
					catWeeks[cat] = map[string]struct{}{}
				}
				catWeeks[cat][week] = struct{}{}
			}
		}
		if item.NeedsReply() {
			needsReply++
		}
		if item.Status == models.StatusPending && ScoreClass(EffectiveScore(item)) == ClassHigh {
			attention++
		}
	}

	lines := make([]string, 0, 5)
	if thisWeek == 0 {
		lines = append(lines, "No new messages this week.")
	} else {
		lines = append(lines, fmt.Sprintf("%d new %s this week.", thisWeek, plural(thisWeek, "message", "messages")))
	}

	if cat, n := weekCats.top(); cat != "" && n > 1 {
		lines = append(lines, fmt.Sprintf("Most mentioned this week: %s (%d).", CategoryBadge(cat).Label, n))
	}

	for _, cat := range allCats.order {
		n := allCats.counts[cat]
		if n >= RecurringMinCount && len(catWeeks[cat]) >= 2 {
			lines = append(lines, fmt.Sprintf("Recurring theme: %s has come up %d times across %d weeks.",
				CategoryBadge(cat).Label, n, len(catWeeks[cat])))
			break
		}
	}

	if needsReply > 0 {
		lines = append(lines, fmt.Sprintf("%d pending %s a suggested reply ready.",
			needsReply, plural(needsReply, "message has", "messages have")))
	}
	if attention > 0 {
		lines = append(lines, fmt.Sprintf("%d pending %s attention.",
			attention, plural(attention, "item needs", "items need")))
	}
	return lines
}

// counter tallies keys and remembers first-seen order for tie breaks
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top() (string, int) {
	best, bestN := "", 0
	for _, key := range c.order {
		if n := c.counts[key]; n > bestN {
			best, bestN = key, n
		}
	}
	return best, bestN
}
