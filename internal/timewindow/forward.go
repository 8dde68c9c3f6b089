package timewindow

import (
	"strings"
	"time"
)

// ResolveForward maps the forward-looking horizon phrases used by option
// expiration queries ("expiring tomorrow", "this week", "this month") to a
// window starting no earlier than the anchor. Same determinism contract as
// Resolve.
func ResolveForward(phrase string, anchor time.Time) (Window, bool) {
	text := strings.ToLower(strings.TrimSpace(phrase))
	anchor = dateOnly(anchor)

	switch {
	case strings.Contains(text, "tomorrow"):
		return singleDay(anchor.AddDate(0, 0, 1), "tomorrow"), true
	case strings.Contains(text, "today"):
		return singleDay(anchor, "today"), true
	case strings.Contains(text, "this week"):
		return newWindow(anchor, mondayOf(anchor).AddDate(0, 0, 6), "this week"), true
	case strings.Contains(text, "next week"):
		start := mondayOf(anchor).AddDate(0, 0, 7)
		return newWindow(start, start.AddDate(0, 0, 6), "next week"), true
	case strings.Contains(text, "this month"):
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		return newWindow(anchor, first.AddDate(0, 1, -1), "this month"), true
	case strings.Contains(text, "next month"):
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		return newWindow(first, first.AddDate(0, 1, -1), "next month"), true
	}
	return Window{}, false
}
