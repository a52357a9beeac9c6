package clock

import (
	"fmt"
	"time"
)

// Schedule times are stored and compared in a single fixed civil offset
// (+05:30) at minute precision. Every comparison against the database must go
// through FloorMinute/Format so the strings sort correctly.
var ISTZone = time.FixedZone("IST", 5*3600+30*60)

// Layout is the canonical minute-precision ISO-8601 layout used in the store.
const Layout = "2006-01-02T15:04:05-07:00"

// FloorMinute converts t to IST and truncates it to the whole minute.
// Seconds and sub-second components are zeroed so equality comparisons in
// due-call queries behave exactly.
func FloorMinute(t time.Time) time.Time {
	t = t.In(ISTZone)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, ISTZone)
}

// Format renders t as the canonical ISO-8601 minute string.
func Format(t time.Time) string {
	return FloorMinute(t).Format(Layout)
}

// Parse reads a canonical schedule string back into IST time.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse schedule time %q: %w", s, err)
	}
	return FloorMinute(t), nil
}
