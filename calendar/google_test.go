package calendar

import (
	"testing"

	gcal "google.golang.org/api/calendar/v3"
)

func TestGoogleEventToRaw(t *testing.T) {
	t.Parallel()

	item := &gcal.Event{
		Summary:     "Client Call",
		Description: "#economic: 123",
		Start:       &gcal.EventDateTime{DateTime: "2024-03-01T09:00:00+01:00"},
		End:         &gcal.EventDateTime{DateTime: "2024-03-01T09:30:00+01:00"},
		Attendees: []*gcal.EventAttendee{
			{Self: true, ResponseStatus: "accepted"},
			{ResponseStatus: "needsAction"},
		},
	}

	event := googleEventToRaw(item)
	if event.Title != "Client Call" || event.Description != "#economic: 123" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Start != "2024-03-01T09:00:00+01:00" {
		t.Fatalf("unexpected start: %q", event.Start)
	}
	if len(event.Attendees) != 2 {
		t.Fatalf("expected 2 attendees, got %d", len(event.Attendees))
	}
	if !event.Attendees[0].Self || event.Attendees[0].Response != "accepted" {
		t.Fatalf("unexpected self attendee: %+v", event.Attendees[0])
	}
	if event.Attendees[1].Response != "needsaction" {
		t.Fatalf("response status must be lower-cased, got %q", event.Attendees[1].Response)
	}
}

func TestGoogleEventToRaw_AllDayUsesBareDate(t *testing.T) {
	t.Parallel()

	item := &gcal.Event{
		Summary: "Conference",
		Start:   &gcal.EventDateTime{Date: "2024-03-01"},
		End:     &gcal.EventDateTime{Date: "2024-03-02"},
	}

	event := googleEventToRaw(item)
	if event.Start != "2024-03-01" || event.End != "2024-03-02" {
		t.Fatalf("unexpected all-day mapping: %+v", event)
	}
	if _, ok := ParseTimestamp(event.Start); ok {
		t.Fatalf("bare date must not parse as a specific timestamp")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	parsed, ok := ParseTimestamp("2024-01-01T09:00:00+02:00")
	if !ok {
		t.Fatalf("expected timestamp to parse")
	}
	if parsed.Hour() != 9 || parsed.Minute() != 0 {
		t.Fatalf("unexpected parsed value: %v", parsed)
	}

	if _, ok := ParseTimestamp("2024-01-01"); ok {
		t.Fatalf("date without time must not parse")
	}
	if _, ok := ParseTimestamp("not a timestamp at all"); ok {
		t.Fatalf("garbage must not parse")
	}
}
