package contextutils

import (
	"strings"
	"time"
)

// TimestampLayout is the wire format for every timestamp the API emits
const TimestampLayout = "2006-01-02T15:04:05Z07:00"

// timestampLayouts lists the accepted inbound forms, most specific first.
// Upstream rows sometimes arrive without a zone; those are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 timestamp. The second return value is
// false when s matches none of the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t in the API wire format, normalized to UTC
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// LoadLocationOrUTC resolves an IANA zone name, falling back to UTC when the
// name is empty or unknown. The second return value is the effective name.
func LoadLocationOrUTC(name string) (*time.Location, string) {
	if name == "" {
		return time.UTC, "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, "UTC"
	}
	return loc, name
}
