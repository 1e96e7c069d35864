package syncer

import (
	"context"
	"fmt"
	"time"

	"econsync/calendar"
	"econsync/internal/extract"
	"econsync/internal/timeutil"
	"econsync/jira"
	"econsync/timeentry"
)

// entryFromEvent maps a filtered event to a billing entry. Project and
// activity ids are extracted from the event text, falling back to the
// configured defaults; the description comes from the activity list, with
// the event title appended for activities marked that way.
func (s *Service) entryFromEvent(event calendar.Event) (timeentry.Entry, error) {
	start, ok := calendar.ParseTimestamp(event.Start)
	if !ok {
		return timeentry.Entry{}, fmt.Errorf("event %q has an unreadable start time", event.Title)
	}
	end, ok := calendar.ParseTimestamp(event.End)
	if !ok {
		return timeentry.Entry{}, fmt.Errorf("event %q has an unreadable end time", event.Title)
	}

	text := event.Title + "\n" + event.Description

	projectID, err := s.resolveProjectID(text, event.Title)
	if err != nil {
		return timeentry.Entry{}, err
	}
	activityID, err := s.resolveActivityID(text, event.Title)
	if err != nil {
		return timeentry.Entry{}, err
	}
	name, ok := s.names[activityID]
	if !ok {
		return timeentry.Entry{}, fmt.Errorf("event %q uses activity %d which is not in the activity list", event.Title, activityID)
	}

	description := name
	if s.opts.AppendTitle[activityID] {
		description = name + " - " + event.Title
	}

	return timeentry.Entry{
		Date:        timeutil.StartOfDay(start),
		ProjectID:   projectID,
		ActivityID:  timeentry.ID(activityID),
		Description: description,
		Hours:       end.Sub(start).Hours(),
	}, nil
}

func (s *Service) resolveProjectID(text, title string) (int, error) {
	id := s.projects.Apply(text)
	switch id.Outcome {
	case extract.OutcomeMatched, extract.OutcomeDefaulted:
		return id.Value, nil
	}
	if s.opts.EconomicProjectID > 0 {
		return s.opts.EconomicProjectID, nil
	}
	return 0, fmt.Errorf("event %q has no project id and no default is configured", title)
}

func (s *Service) resolveActivityID(text, title string) (int, error) {
	id := s.acts.Apply(text)
	switch id.Outcome {
	case extract.OutcomeMatched, extract.OutcomeDefaulted:
		return id.Value, nil
	}
	return 0, fmt.Errorf("event %q has no activity id and no default is configured", title)
}

// entryFromTask maps a tracked task to a billing entry for the given day.
// The project id comes from the first configured field holding a value with
// a leading number. Hours are summed from the task's logged time when
// work-log tracking is on, and zero otherwise.
func (s *Service) entryFromTask(ctx context.Context, tasks TaskSource, issue jira.Issue, day time.Time) (timeentry.Entry, error) {
	projectID, ok := extract.FirstLeadingID(issue.Fields, s.opts.TaskFields)
	if !ok {
		return timeentry.Entry{}, fmt.Errorf("task %s is missing an economic project id", issue.Key)
	}

	var hours float64
	if s.opts.TaskHoursFromWorklog {
		logged, err := tasks.HoursForDay(ctx, issue.Key, day)
		if err != nil {
			return timeentry.Entry{}, fmt.Errorf("task %s: %w", issue.Key, err)
		}
		hours = logged
	}

	return timeentry.Entry{
		Date:        timeutil.StartOfDay(day),
		ProjectID:   projectID,
		ActivityID:  timeentry.MaybeID(s.opts.TaskActivityID),
		Description: issue.Key + " " + issue.Summary(),
		Hours:       hours,
	}, nil
}
