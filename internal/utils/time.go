package utils

import (
	"math"
	"time"
)

func FormatTimeISO(t time.Time) string {
	return t.Format(time.RFC3339)
}

func ParseTimeISO(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 999000000, t.Location())
}

func StartOfMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return EndOfDay(StartOfMonth(t).AddDate(0, 1, -1))
}

// SubscriptionExpiry computes the expiry for a package accepted now: the same
// calendar date shifted by the package duration, normalized to end of day.
func SubscriptionExpiry(now time.Time, durationInMonths int) time.Time {
	return EndOfDay(now.AddDate(0, durationInMonths, 0))
}

// DaysUntil returns the number of days from now until t, rounded up so a
// partial day still counts as one remaining day.
func DaysUntil(now, t time.Time) int {
	diff := t.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}
