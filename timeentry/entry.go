package timeentry

import (
	"strconv"
	"strings"
	"time"
)

// Entry is the normalized time record submitted to the billing backend.
type Entry struct {
	Date        time.Time
	ProjectID   int
	ActivityID  OptionalID
	Description string
	Hours       float64
}

// DateField renders the date the way the backend entry form expects it.
func (e Entry) DateField() string {
	return e.Date.Format("2006-01-02")
}

// HoursField renders the duration with the backend's comma decimal separator.
func (e Entry) HoursField() string {
	return FormatHours(e.Hours)
}

// FormatHours renders hours with a comma decimal separator and at least one
// decimal place, matching the backend's locale convention (1.5 -> "1,5",
// 0 -> "0,0").
func FormatHours(hours float64) string {
	text := strconv.FormatFloat(hours, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return strings.Replace(text, ".", ",", 1)
}

// OptionalID is a numeric id that may be absent. Absent ids serialize to an
// empty form field; tracker-sourced entries without a default activity rely
// on that.
type OptionalID struct {
	Valid bool
	Value int
}

func ID(value int) OptionalID {
	return OptionalID{Valid: true, Value: value}
}

// MaybeID returns an absent id for values that are not positive.
func MaybeID(value int) OptionalID {
	if value <= 0 {
		return OptionalID{}
	}
	return ID(value)
}

func (id OptionalID) String() string {
	if !id.Valid {
		return ""
	}
	return strconv.Itoa(id.Value)
}
