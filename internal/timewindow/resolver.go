// Package timewindow turns relative time phrases ("last 3 trading days",
// "yesterday", "this month", "on Friday") into concrete calendar windows.
//
// Resolution is pure: the same phrase and anchor date always produce the
// same window. Phrase families are tried in a fixed order and the first
// match wins, so two lexically overlapping patterns can never both fire.
package timewindow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Window is an inclusive calendar date range. TradingDays counts the
// weekdays (Monday-Friday) inside the bounds; market holidays are not
// excluded.
type Window struct {
	Start       time.Time
	End         time.Time
	Description string
	TradingDays int
	// Weekday is set when the phrase was a bare weekday name. Such a
	// query is portfolio-wide unless the caller already extracted a
	// symbol independently.
	Weekday bool
}

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var (
	lastNDaysRe = regexp.MustCompile(`\b(?:last|past)\s+([a-z]+|\d+)\s+(trading\s+)?days?\b`)
	weekdayRe   = regexp.MustCompile(`\b(?:on\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	bareNDaysRe = regexp.MustCompile(`\b([a-z]+|\d+)\s+trading\s+days?\b`)
)

// Resolve maps a relative time phrase to a concrete window against the
// given anchor date. ok is false when no phrase family matches; falling
// back to year-to-date (or rejecting the query) is the caller's policy.
func Resolve(phrase string, anchor time.Time) (Window, bool) {
	text := strings.ToLower(strings.TrimSpace(phrase))
	anchor = dateOnly(anchor)

	// 1. "last/past N (trading) day(s)".
	if m := lastNDaysRe.FindStringSubmatch(text); m != nil {
		if n, ok := parseCount(m[1]); ok {
			return nDayWindow(anchor, n, m[2] != ""), true
		}
	}

	// 2. Named single days.
	if strings.Contains(text, "today") {
		return singleDay(anchor, "today"), true
	}
	if strings.Contains(text, "yesterday") {
		return singleDay(anchor.AddDate(0, 0, -1), "yesterday"), true
	}

	// 3. Named calendar ranges. Week starts Monday; month and year use
	// calendar boundaries, not trading-day boundaries.
	if w, ok := namedRange(text, anchor); ok {
		return w, true
	}

	// 4. Weekday names resolve to the most recent occurrence on or
	// before the anchor.
	if m := weekdayRe.FindStringSubmatch(text); m != nil {
		target := weekdayNames[m[1]]
		delta := (int(anchor.Weekday()) - int(target) + 7) % 7
		day := anchor.AddDate(0, 0, -delta)
		w := singleDay(day, day.Format("Monday, Jan 2"))
		w.Weekday = true
		return w, true
	}

	// 5. Bare "N trading days" without a leading preposition.
	if m := bareNDaysRe.FindStringSubmatch(text); m != nil {
		if n, ok := parseCount(m[1]); ok {
			return nDayWindow(anchor, n, true), true
		}
	}

	return Window{}, false
}

func namedRange(text string, anchor time.Time) (Window, bool) {
	switch {
	case strings.Contains(text, "this week"):
		return newWindow(mondayOf(anchor), anchor, "this week"), true
	case strings.Contains(text, "last week"):
		start := mondayOf(anchor).AddDate(0, 0, -7)
		return newWindow(start, start.AddDate(0, 0, 6), "last week"), true
	case strings.Contains(text, "this month"):
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		return newWindow(start, anchor, "this month"), true
	case strings.Contains(text, "last month"):
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		return newWindow(first.AddDate(0, -1, 0), first.AddDate(0, 0, -1), "last month"), true
	case strings.Contains(text, "this year"):
		start := time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return newWindow(start, anchor, "this year"), true
	}
	return Window{}, false
}

// nDayWindow builds a window ending at the anchor that contains exactly n
// trading days (trading=true) or n calendar days.
func nDayWindow(anchor time.Time, n int, trading bool) Window {
	if trading {
		start := anchor
		counted := 0
		if isTradingDay(start) {
			counted = 1
		}
		for counted < n {
			start = start.AddDate(0, 0, -1)
			if isTradingDay(start) {
				counted++
			}
		}
		return newWindow(start, anchor, fmt.Sprintf("the last %d trading days", n))
	}
	start := anchor.AddDate(0, 0, -(n - 1))
	return newWindow(start, anchor, fmt.Sprintf("the last %d days", n))
}

func singleDay(day time.Time, desc string) Window {
	return newWindow(day, day, desc)
}

func newWindow(start, end time.Time, desc string) Window {
	return Window{
		Start:       start,
		End:         end,
		Description: desc,
		TradingDays: countTradingDays(start, end),
	}
}

func parseCount(token string) (int, bool) {
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 {
			return 0, false
		}
		return n, true
	}
	n, ok := wordNumbers[token]
	return n, ok
}

func countTradingDays(start, end time.Time) int {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if isTradingDay(d) {
			count++
		}
	}
	return count
}

func isTradingDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
