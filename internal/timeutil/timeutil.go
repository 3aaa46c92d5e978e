// Package timeutil provides calendar-day math and relative-time formatting.
// All functions are pure. Day boundaries are local midnight in the
// location carried by the input time.
package timeutil

import (
	"fmt"
	"time"
)

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// AddDays returns t shifted by n calendar days (n may be negative).
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsToday reports whether t falls on now's calendar day.
func IsToday(t, now time.Time) bool {
	return SameDay(t, now)
}

// IsYesterday reports whether t falls on the calendar day before now's.
func IsYesterday(t, now time.Time) bool {
	return SameDay(t, AddDays(now, -1))
}

// DaysBetween returns the whole number of calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	days := StartOfDay(b).Sub(StartOfDay(a)) / (24 * time.Hour)
	return int(days)
}

// DayKey formats t's calendar day as YYYY-MM-DD, the grouping key used
// by XP breakdowns.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ─── Relative Time ──────────────────────────────────────────────────────────

// RelativeTime renders t relative to base: "just now", "5 minutes ago",
// "in 3 days". Buckets: seconds < minutes < hours < days < weeks <
// months (30d) < years (365d).
func RelativeTime(t, base time.Time) string {
	diff := base.Sub(t)
	future := diff < 0
	if future {
		diff = -diff
	}

	sec := int(diff / time.Second)
	min := sec / 60
	hour := min / 60
	day := hour / 24
	week := day / 7
	month := day / 30
	year := day / 365

	switch {
	case sec < 10:
		return "just now"
	case sec < 60:
		return relUnit(sec, "second", future)
	case min < 60:
		return relUnit(min, "minute", future)
	case hour < 24:
		return relUnit(hour, "hour", future)
	case day < 7:
		return relUnit(day, "day", future)
	case week < 4:
		return relUnit(week, "week", future)
	case month < 12:
		return relUnit(month, "month", future)
	default:
		return relUnit(year, "year", future)
	}
}

func relUnit(n int, unit string, future bool) string {
	plural := ""
	if n != 1 {
		plural = "s"
	}
	if future {
		return fmt.Sprintf("in %d %s%s", n, unit, plural)
	}
	return fmt.Sprintf("%d %s%s ago", n, unit, plural)
}

// FormatDuration renders a duration as "2d 3h", "3h 15m", "45m" or "30s".
func FormatDuration(d time.Duration) string {
	sec := int(d / time.Second)
	min := sec / 60
	hour := min / 60
	day := hour / 24

	switch {
	case day > 0:
		return fmt.Sprintf("%dd %dh", day, hour%24)
	case hour > 0:
		return fmt.Sprintf("%dh %dm", hour, min%60)
	case min > 0:
		return fmt.Sprintf("%dm", min)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
