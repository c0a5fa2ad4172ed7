package timestamp

import (
	"strconv"
	"time"
)

// NaiveLayout is a date-time without an offset, read as UTC wall-clock.
const NaiveLayout = "2006-01-02 15:04:05"

// strategy attempts a single interpretation of a raw date string
type strategy func(s string) (time.Time, bool)

// strategies are tried in order, first success wins
var strategies = []strategy{
	parseRFC3339,
	parseNaive,
	parseDateOnly,
	parseEpochMillis,
}

// Parse converts a raw catalogue date string into a UTC instant.
// The boolean is false when no known format matches; this is not an error.
// Instants outside years 0-9999 cannot be written back out as JSON and are
// treated as unmatched.
func Parse(s string) (time.Time, bool) {
	for _, try := range strategies {
		if t, ok := try(s); ok {
			if !representable(t) {
				return time.Time{}, false
			}
			return t, true
		}
	}
	return time.Time{}, false
}

func representable(t time.Time) bool {
	year := t.Year()
	return year >= 0 && year <= 9999
}

// Normalize is Parse returning nil instead of false.
func Normalize(s string) *time.Time {
	t, ok := Parse(s)
	if !ok {
		return nil
	}
	return &t
}

// Curse: "2021-05-01T12:00:00+00:00"
func parseRFC3339(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Tukui: "2021-05-01 12:00:00"
func parseNaive(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(NaiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ElvUI and Tukui itself: "2021-05-01"
func parseDateOnly(s string) (time.Time, bool) {
	return parseNaive(s + " 00:00:00")
}

// WowInterface: milliseconds since the epoch, "1619870400000"
func parseEpochMillis(s string) (time.Time, bool) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(ms/1000, 0).UTC(), true
}
