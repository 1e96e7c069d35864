package calendar

import (
	"fmt"
	"io"
	"strings"
)

const responseAccepted = "accepted"

// Chain reduces raw events to the subset eligible for billing. Predicates run
// in a fixed order; later ones assume the invariants of earlier ones. Each
// dropped event gets exactly one diagnostic line, and a malformed event never
// stops the chain.
type Chain struct {
	ignorePhrases []string
	out           io.Writer
}

// NewChain builds a filter chain. Phrases are matched lower-cased; empty
// phrases are kept out so they can never match everything.
func NewChain(ignorePhrases []string, out io.Writer) *Chain {
	phrases := make([]string, 0, len(ignorePhrases))
	for _, phrase := range ignorePhrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		phrases = append(phrases, phrase)
	}
	return &Chain{ignorePhrases: phrases, out: out}
}

// Apply runs all predicates in order and returns survivors in their original
// relative order.
func (c *Chain) Apply(events []Event) []Event {
	events = c.withAttendees(events)
	events = c.accepted(events)
	events = c.withoutIgnoredPhrases(events)
	return c.withValidDates(events)
}

func (c *Chain) withAttendees(events []Event) []Event {
	output := make([]Event, 0, len(events))
	for _, event := range events {
		if len(event.Attendees) == 0 {
			c.skip("no attendees", event)
			continue
		}
		output = append(output, event)
	}
	return output
}

func (c *Chain) accepted(events []Event) []Event {
	output := make([]Event, 0, len(events))
	for _, event := range events {
		if !selfAccepted(event) {
			c.skip("not attending", event)
			continue
		}
		output = append(output, event)
	}
	return output
}

func (c *Chain) withoutIgnoredPhrases(events []Event) []Event {
	output := make([]Event, 0, len(events))
	for _, event := range events {
		if c.ignored(event.Title) {
			c.skip("contains ignored phrase", event)
			continue
		}
		output = append(output, event)
	}
	return output
}

func (c *Chain) withValidDates(events []Event) []Event {
	output := make([]Event, 0, len(events))
	for _, event := range events {
		if _, ok := ParseTimestamp(event.Start); !ok {
			c.skip("event without specific hours of start/end", event)
			continue
		}
		if _, ok := ParseTimestamp(event.End); !ok {
			c.skip("event without specific hours of start/end", event)
			continue
		}
		if event.Start[:10] != event.End[:10] {
			c.skip("event start and end days are different", event)
			continue
		}
		output = append(output, event)
	}
	return output
}

func selfAccepted(event Event) bool {
	for _, attendee := range event.Attendees {
		if attendee.Self {
			return attendee.Response == responseAccepted
		}
	}
	return false
}

func (c *Chain) ignored(title string) bool {
	title = strings.ToLower(title)
	for _, phrase := range c.ignorePhrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}
	return false
}

func (c *Chain) skip(reason string, event Event) {
	fmt.Fprintf(c.out, "SKIPPED (%s) - %s\n", reason, event.Title)
}
