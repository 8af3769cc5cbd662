package triage

import (
	"fmt"
	"time"

	contextutils "grovaapp/internal/utils"
)

// AbsoluteAfter is the age beyond which TimeAgo prints a calendar date
const AbsoluteAfter = 30 * 24 * time.Hour

// AbsoluteDateLayout formats dates older than AbsoluteAfter
const AbsoluteDateLayout = "Jan 2, 2006"

// TimeAgo formats iso relative to now: "just now", "5m ago", "3h ago",
// "12d ago", then an absolute UTC date past 30 days. Timestamps in the
// future read as "just now". Unparseable input is returned unchanged.
func TimeAgo(now time.Time, iso string) string {
	ts, ok := contextutils.ParseTimestamp(iso)
	if !ok {
		return iso
	}

	age := now.Sub(ts)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age/time.Minute))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age/time.Hour))
	case age <= AbsoluteAfter:
		return fmt.Sprintf("%dd ago", int(age/(24*time.Hour)))
	default:
		return ts.UTC().Format(AbsoluteDateLayout)
	}
}
