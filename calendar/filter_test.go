package calendar

import (
	"bytes"
	"strings"
	"testing"
)

func acceptedEvent(title string) Event {
	return Event{
		Title:     title,
		Start:     "2024-03-01T09:00:00",
		End:       "2024-03-01T09:30:00",
		Attendees: []Attendee{{Self: true, Response: "accepted"}},
	}
}

func TestChain_DropsEventsWithoutAttendees(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	chain := NewChain(nil, &out)

	events := []Event{
		{Title: "Public Holiday", Start: "2024-03-01T09:00:00", End: "2024-03-01T10:00:00"},
		acceptedEvent("Client Call"),
	}

	got := chain.Apply(events)
	if len(got) != 1 || got[0].Title != "Client Call" {
		t.Fatalf("expected only Client Call to survive, got %+v", got)
	}
	if n := strings.Count(out.String(), "SKIPPED (no attendees) - Public Holiday"); n != 1 {
		t.Fatalf("expected exactly one diagnostic, output: %q", out.String())
	}
}

func TestChain_DropsNotAcceptedRegardlessOfOtherAttendees(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	chain := NewChain(nil, &out)

	event := acceptedEvent("Planning")
	event.Attendees = []Attendee{
		{Self: false, Response: "accepted"},
		{Self: true, Response: "tentative"},
		{Self: false, Response: "accepted"},
	}

	if got := chain.Apply([]Event{event}); len(got) != 0 {
		t.Fatalf("expected tentative self response to drop the event")
	}
	if !strings.Contains(out.String(), "SKIPPED (not attending) - Planning") {
		t.Fatalf("missing diagnostic, output: %q", out.String())
	}
}

func TestChain_DropsEventWithoutSelfAttendee(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	chain := NewChain(nil, &out)

	event := acceptedEvent("Team Standup")
	event.Attendees = []Attendee{{Self: false, Response: "accepted"}}

	if got := chain.Apply([]Event{event}); len(got) != 0 {
		t.Fatalf("expected event without self attendee to be dropped")
	}
}

func TestChain_IgnorePhrasesAreCaseInsensitiveSubstrings(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	chain := NewChain([]string{"sync"}, &out)

	if got := chain.Apply([]Event{acceptedEvent("Weekly Sync")}); len(got) != 0 {
		t.Fatalf("expected ignored phrase to drop the event")
	}
	if !strings.Contains(out.String(), "SKIPPED (contains ignored phrase) - Weekly Sync") {
		t.Fatalf("missing diagnostic, output: %q", out.String())
	}
}

func TestChain_EmptyIgnorePhraseNeverMatches(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	chain := NewChain([]string{"", " "}, &out)

	if got := chain.Apply([]Event{acceptedEvent("Anything At All")}); len(got) != 1 {
		t.Fatalf("empty ignore phrase must not drop events")
	}
}

func TestChain_DropsAllDayAndCrossDayEvents(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	chain := NewChain(nil, &out)

	allDay := acceptedEvent("Conference")
	allDay.Start = "2024-03-01"
	allDay.End = "2024-03-02"

	crossDay := acceptedEvent("Night Shift")
	crossDay.Start = "2024-03-01T23:00:00"
	crossDay.End = "2024-03-02T01:00:00"

	if got := chain.Apply([]Event{allDay, crossDay}); len(got) != 0 {
		t.Fatalf("expected both events dropped, got %+v", got)
	}
	if !strings.Contains(out.String(), "SKIPPED (event without specific hours of start/end) - Conference") {
		t.Fatalf("missing all-day diagnostic, output: %q", out.String())
	}
	if !strings.Contains(out.String(), "SKIPPED (event start and end days are different) - Night Shift") {
		t.Fatalf("missing cross-day diagnostic, output: %q", out.String())
	}
}

func TestChain_PreservesRelativeOrder(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	chain := NewChain(nil, &out)

	events := []Event{
		acceptedEvent("First"),
		{Title: "Holiday"},
		acceptedEvent("Second"),
		acceptedEvent("Third"),
	}

	got := chain.Apply(events)
	if len(got) != 3 {
		t.Fatalf("expected 3 survivors, got %d", len(got))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if got[i].Title != want {
			t.Fatalf("expected %q at position %d, got %q", want, i, got[i].Title)
		}
	}
}
