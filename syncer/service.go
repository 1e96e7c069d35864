// Package syncer turns calendar events and tracked tasks into billing
// entries and pushes them to the ledger, skipping anything already
// registered on the target day.
package syncer

import (
	"context"
	"fmt"
	"io"
	"time"

	"econsync/calendar"
	"econsync/economic"
	"econsync/internal/extract"
	"econsync/internal/timeutil"
	"econsync/jira"
	"econsync/timeentry"
)

// Status is the terminal state of a single entry.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusSimulated Status = "simulated"
	StatusRecorded  Status = "recorded"
	StatusFailed    Status = "failed"
)

// Result captures what happened to one candidate entry.
type Result struct {
	Source string
	Entry  timeentry.Entry
	Status Status
	Reason string
}

// Ledger is the billing backend surface the service needs.
type Ledger interface {
	DayEntries(ctx context.Context, day time.Time) (string, error)
	Activities(ctx context.Context) (map[int]string, error)
	AddEntry(ctx context.Context, entry timeentry.Entry) error
}

// TaskSource lists tracked tasks and their logged time.
type TaskSource interface {
	Search(ctx context.Context) ([]jira.Issue, error)
	HoursForDay(ctx context.Context, issueKey string, day time.Time) (float64, error)
}

// Options selects how events and tasks are mapped to entries.
type Options struct {
	DryRun bool

	IgnorePhrases     []string
	ProjectPattern    string
	ActivityPattern   string
	DefaultProjectID  int
	DefaultActivityID int

	// Fallback used when neither the pattern nor the calendar default
	// yields a project id.
	EconomicProjectID int

	AppendTitle map[int]bool

	TaskFields           []string
	TaskActivityID       int
	TaskHoursFromWorklog bool
}

// Service runs the sync for one day against one ledger.
type Service struct {
	ledger   Ledger
	opts     Options
	out      io.Writer
	projects *extract.Extractor
	acts     *extract.Extractor

	registered string
	names      map[int]string
}

func NewService(ledger Ledger, opts Options, out io.Writer) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("syncer requires a ledger")
	}
	projects, err := extract.NewExtractor(opts.ProjectPattern, opts.DefaultProjectID)
	if err != nil {
		return nil, fmt.Errorf("project id pattern: %w", err)
	}
	acts, err := extract.NewExtractor(opts.ActivityPattern, opts.DefaultActivityID)
	if err != nil {
		return nil, fmt.Errorf("activity id pattern: %w", err)
	}
	return &Service{
		ledger:   ledger,
		opts:     opts,
		out:      out,
		projects: projects,
		acts:     acts,
	}, nil
}

// Begin loads the day's registered entries and the activity list. It must
// run before any Sync call so duplicate checks and activity lookups work.
func (s *Service) Begin(ctx context.Context, day time.Time) error {
	registered, err := s.ledger.DayEntries(ctx, day)
	if err != nil {
		return fmt.Errorf("listing registered entries: %w", err)
	}
	names, err := s.ledger.Activities(ctx)
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}
	s.registered = registered
	s.names = names
	return nil
}

// SyncCalendar fetches the day's events, filters them and submits one entry
// per surviving event. Per-event failures are reported and do not stop the
// remaining events.
func (s *Service) SyncCalendar(ctx context.Context, source calendar.Source, day time.Time) ([]Result, error) {
	from, to := timeutil.DayBounds(day)
	events, err := source.Events(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	chain := calendar.NewChain(s.opts.IgnorePhrases, s.out)
	var results []Result
	for _, event := range chain.Apply(events) {
		entry, err := s.entryFromEvent(event)
		if err != nil {
			fmt.Fprintf(s.out, "ERROR - %v\n", err)
			results = append(results, Result{Source: "calendar", Status: StatusFailed, Reason: err.Error()})
			continue
		}
		results = append(results, s.submit(ctx, "calendar", entry))
	}
	return results, nil
}

// SyncTasks submits one entry per tracked task from the search query.
func (s *Service) SyncTasks(ctx context.Context, tasks TaskSource, day time.Time) ([]Result, error) {
	issues, err := tasks.Search(ctx)
	if err != nil {
		return nil, fmt.Errorf("searching tasks: %w", err)
	}

	var results []Result
	for _, issue := range issues {
		entry, err := s.entryFromTask(ctx, tasks, issue, day)
		if err != nil {
			fmt.Fprintf(s.out, "ERROR - %v\n", err)
			results = append(results, Result{Source: "tasks", Status: StatusFailed, Reason: err.Error()})
			continue
		}
		results = append(results, s.submit(ctx, "tasks", entry))
	}
	return results, nil
}

// submit runs the duplicate check and, unless dry-run is on, records the
// entry. Every accepted entry extends the in-memory registered blob so a
// later entry with the same description is treated as a duplicate within
// the same run.
func (s *Service) submit(ctx context.Context, source string, entry timeentry.Entry) Result {
	if economic.IsDuplicate(s.registered, entry.Description) {
		fmt.Fprintf(s.out, "SKIPPED - %s\n", entry.Description)
		return Result{Source: source, Entry: entry, Status: StatusSkipped, Reason: "already registered"}
	}

	if s.opts.DryRun {
		fmt.Fprintf(s.out, "OK - time entry will be added: %s\n", entry.Description)
		s.remember(entry)
		return Result{Source: source, Entry: entry, Status: StatusSimulated}
	}

	if err := s.ledger.AddEntry(ctx, entry); err != nil {
		fmt.Fprintf(s.out, "ERROR - time entry not added: %s (%v)\n", entry.Description, err)
		return Result{Source: source, Entry: entry, Status: StatusFailed, Reason: err.Error()}
	}
	fmt.Fprintf(s.out, "OK - time entry added: %s\n", entry.Description)
	s.remember(entry)
	return Result{Source: source, Entry: entry, Status: StatusRecorded}
}

func (s *Service) remember(entry timeentry.Entry) {
	s.registered += "\n" + economic.DescriptionKey(entry.Description)
}
