package calendar

import (
	"context"
	"time"
)

// timestampLayout is the provider-neutral second-precision shape the filter
// chain and entry building parse. Adapters pass timestamps through raw;
// anything longer (offsets, fractional seconds) is truncated before parsing.
const timestampLayout = "2006-01-02T15:04:05"

// Attendee is one participant of a raw calendar event. Response values are
// normalized to lower case by the provider adapters ("accepted", "declined",
// "tentative", "needsaction").
type Attendee struct {
	Self     bool
	Response string
}

// Event is the internal raw-event shape shared by all provider adapters.
// Start and End stay raw ISO 8601 strings; all-day events carry a bare date
// (or nothing) and are weeded out by the filter chain, not by the adapters.
type Event struct {
	Title       string
	Start       string
	End         string
	Description string
	Attendees   []Attendee
}

// Source lists raw meetings for a date range.
type Source interface {
	Events(ctx context.Context, from, to time.Time) ([]Event, error)
}

// ParseTimestamp parses a raw event timestamp truncated to second precision.
func ParseTimestamp(value string) (time.Time, bool) {
	if len(value) < len(timestampLayout) {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation(timestampLayout, value[:len(timestampLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
