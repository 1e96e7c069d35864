package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"econsync/calendar"
	"econsync/config"
	"econsync/jira"
	"econsync/output"
	"econsync/syncer"
)

var (
	syncDryRun       bool
	syncDate         string
	syncTimeout      time.Duration
	syncStateFile    string
	syncReport       string
	syncReportFormat string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Register the day's meetings and tasks as Economic time entries",
	Long: `Pull the day's accepted meetings from the configured calendar and open tasks
from JIRA, build time entries and register them on the Economic timesheet.

Entries whose description is already present on the day are skipped, so the
command can run any number of times. Each calendar event and each task is
processed independently; a failing item is reported and the rest continue.

Tasks are only synced for the current day. With --date the calendar is synced
for that day and task processing is skipped.

Authentication uses the configured credentials, or session cookies from the
auth state JSON (created by "econsync auth login") when present.`,
	Example: `
  # Preview today's entries without writing
  econsync sync --dry-run

  # Register today's entries
  econsync sync

  # Register calendar entries for a past day
  econsync sync --date 2026-08-28

  # Write a CSV report of what happened per entry
  econsync sync --report ./sync-report.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		day, dayOverridden, err := resolveSyncDay(syncDate)
		if err != nil {
			return err
		}

		var reportWriter output.Writer
		if syncReport != "" {
			reportWriter, err = output.WriterForFormat(syncReportFormat)
			if err != nil {
				return err
			}
		}

		client, err := buildEconomicClient(cfg, syncStateFile)
		if err != nil {
			return err
		}

		loginCtx, cancelLogin := context.WithTimeout(context.Background(), syncTimeout)
		err = client.Login(loginCtx)
		cancelLogin()
		if err != nil {
			return fmt.Errorf("economic login: %w", err)
		}

		svc, err := syncer.NewService(client, syncOptions(cfg, syncDryRun), os.Stdout)
		if err != nil {
			return err
		}

		beginCtx, cancelBegin := context.WithTimeout(context.Background(), syncTimeout)
		err = svc.Begin(beginCtx, day)
		cancelBegin()
		if err != nil {
			return err
		}

		if syncDryRun {
			fmt.Println("Sync dry-run mode: evaluating entries without registering them.")
		}

		var results []syncer.Result

		source, err := buildCalendarSource(cfg)
		if err != nil {
			fmt.Printf("ERROR - calendar source unavailable: %v\n", err)
		} else {
			calCtx, cancelCal := context.WithTimeout(context.Background(), syncTimeout)
			calResults, calErr := svc.SyncCalendar(calCtx, source, day)
			cancelCal()
			if calErr != nil {
				fmt.Printf("ERROR - calendar sync failed: %v\n", calErr)
			}
			results = append(results, calResults...)
		}

		switch {
		case dayOverridden:
			fmt.Println("Task sync only runs for the current day. Skipping tasks.")
		case !cfg.Jira.Enabled():
			// No tracker configured, nothing to do.
		default:
			tasks, taskErr := jira.NewClient(jira.ClientConfig{
				APIURL:      cfg.Jira.APIURL,
				Username:    cfg.Jira.Username,
				Password:    cfg.Jira.Password,
				SearchQuery: cfg.Jira.SearchQuery,
				UserAgent:   "econsync-sync/1.0",
			})
			if taskErr != nil {
				fmt.Printf("ERROR - task source unavailable: %v\n", taskErr)
				break
			}
			taskCtx, cancelTasks := context.WithTimeout(context.Background(), syncTimeout)
			taskResults, tasksErr := svc.SyncTasks(taskCtx, tasks, day)
			cancelTasks()
			if tasksErr != nil {
				fmt.Printf("ERROR - task sync failed: %v\n", tasksErr)
			}
			results = append(results, taskResults...)
		}

		printSyncSummary(results)

		if reportWriter != nil {
			if err := reportWriter.Write(syncReport, results); err != nil {
				return err
			}
			fmt.Printf("Report written to: %s\n", syncReport)
		}

		return nil
	},
}

func syncOptions(cfg *config.Config, dryRun bool) syncer.Options {
	return syncer.Options{
		DryRun:               dryRun,
		IgnorePhrases:        cfg.Calendar.IgnorePhrases(),
		ProjectPattern:       cfg.Calendar.ProjectIDPattern,
		ActivityPattern:      cfg.Calendar.ActivityIDPattern,
		DefaultProjectID:     cfg.Calendar.DefaultProjectID,
		DefaultActivityID:    cfg.Calendar.DefaultActivityID,
		EconomicProjectID:    cfg.Economic.DefaultProjectID,
		AppendTitle:          cfg.Economic.AppendTitleSet(),
		TaskFields:           cfg.Jira.FieldNames(),
		TaskActivityID:       cfg.Jira.DefaultActivityID,
		TaskHoursFromWorklog: cfg.Jira.UseWorklog,
	}
}

func buildCalendarSource(cfg *config.Config) (calendar.Source, error) {
	switch cfg.Calendar.Provider {
	case config.ProviderOffice365:
		source, err := calendar.NewOffice365Source(calendar.Office365Config{
			BaseURL:   cfg.Calendar.Office365.BaseURL,
			Email:     cfg.Calendar.Office365.Email,
			Password:  cfg.Calendar.Office365.Password,
			UserAgent: "econsync-sync/1.0",
		})
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		sourceCtx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		source, err := calendar.NewGoogleSource(sourceCtx, calendar.GoogleConfig{
			ClientID:     cfg.Calendar.Google.ClientID,
			ClientSecret: cfg.Calendar.Google.ClientSecret,
			TokenFile:    cfg.Calendar.Google.TokenFile,
		})
		if err != nil {
			return nil, err
		}
		return source, nil
	}
}

func printSyncSummary(results []syncer.Result) {
	counts := map[syncer.Status]int{}
	for _, result := range results {
		counts[result.Status]++
	}
	fmt.Println("Sync summary:")
	fmt.Printf("  Registered: %d\n", counts[syncer.StatusRecorded])
	fmt.Printf("  Simulated:  %d\n", counts[syncer.StatusSimulated])
	fmt.Printf("  Skipped:    %d\n", counts[syncer.StatusSkipped])
	fmt.Printf("  Failed:     %d\n", counts[syncer.StatusFailed])
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Evaluate and report entries without registering them")
	syncCmd.Flags().StringVar(&syncDate, "date", "", "Sync calendar entries for this day instead of today (YYYY-MM-DD)")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 5*time.Minute, "Timeout per backend operation")
	syncCmd.Flags().StringVar(&syncStateFile, "state-file", "", "Path to auth state JSON (default: $HOME/.econsync/economic-auth-state.json)")
	syncCmd.Flags().StringVar(&syncReport, "report", "", "Write a per-entry report to this file")
	syncCmd.Flags().StringVar(&syncReportFormat, "report-format", "csv", "Report format: csv | excel")
}
