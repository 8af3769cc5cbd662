package contextutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{name: "rfc3339 zulu", input: "2026-01-15T10:00:00Z", want: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), ok: true},
		{name: "millis", input: "2026-01-15T10:00:00.123Z", want: time.Date(2026, 1, 15, 10, 0, 0, 123000000, time.UTC), ok: true},
		{name: "offset", input: "2026-01-15T12:00:00+02:00", want: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), ok: true},
		{name: "no zone reads as utc", input: "2026-01-15T10:00:00", want: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), ok: true},
		{name: "postgres style", input: "2026-01-15 10:00:00", want: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), ok: true},
		{name: "date only", input: "2026-01-15", want: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "empty", input: "", ok: false},
		{name: "garbage", input: "yesterday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	assert.Equal(t, "2026-01-15T09:00:00Z", FormatTimestamp(time.Date(2026, 1, 15, 10, 0, 0, 0, loc)))
}

func TestLoadLocationOrUTC(t *testing.T) {
	loc, name := LoadLocationOrUTC("")
	assert.Equal(t, time.UTC, loc)
	assert.Equal(t, "UTC", name)

	_, name = LoadLocationOrUTC("Not/AZone")
	assert.Equal(t, "UTC", name)

	_, name = LoadLocationOrUTC("America/Los_Angeles")
	assert.Equal(t, "America/Los_Angeles", name)
}
