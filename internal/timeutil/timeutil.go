package timeutil

import "time"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayBounds returns the inclusive start and exclusive end of the calendar day
// containing value, in its location.
func DayBounds(value time.Time) (time.Time, time.Time) {
	start := StartOfDay(value)
	return start, start.AddDate(0, 0, 1)
}
