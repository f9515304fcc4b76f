package util

import (
	"strings"
	"time"
)

const (
	dateLayout            = "2006-01-02"
	taskwarriorTimeLayout = "20060102T150405Z"
)

// ParseDate parses a due date as supplied by any of the task sources.
// Accepted forms are YYYY-MM-DD, RFC 3339 (Notion, Google Tasks) and the
// Taskwarrior export layout. The result is the calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, taskwarriorTimeLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			// Notion and Google Tasks send dates with an explicit offset; keep the
			// date as written rather than shifting it into loc.
			if layout == taskwarriorTimeLayout {
				t = t.In(loc)
			}
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), true
		}
	}

	// "2024-03-01T..." with a layout we do not know still carries its date.
	if i := strings.IndexByte(s, 'T'); i == len(dateLayout) {
		if t, err := time.ParseInLocation(dateLayout, s[:i], loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysUntil returns the number of calendar days from now's date to due's date.
// The result is negative for overdue dates.
func DaysUntil(now, due time.Time) int {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = due.In(loc).Date()
	target := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today).Hours() / 24)
}

// DisplayDate renders a due date for the report: the calendar date when it
// parses, the raw text otherwise.
func DisplayDate(raw string) string {
	if t, ok := ParseDate(raw, time.UTC); ok {
		return t.Format(dateLayout)
	}
	return strings.TrimSpace(raw)
}
