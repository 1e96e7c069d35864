package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"econsync/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Secrets are
not printed.`,
	Example: `
  # Show active configuration
  econsync config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
			fmt.Println("Configuration:")
			fmt.Printf("calendar.provider: %s\n", cfg.Calendar.Provider)
			fmt.Printf("calendar.ignore_events: %s\n", cfg.Calendar.IgnoreEvents)
			fmt.Printf("calendar.project_id_pattern: %s\n", cfg.Calendar.ProjectIDPattern)
			fmt.Printf("calendar.activity_id_pattern: %s\n", cfg.Calendar.ActivityIDPattern)
			fmt.Printf("calendar.default_project_id: %d\n", cfg.Calendar.DefaultProjectID)
			fmt.Printf("calendar.default_activity_id: %d\n", cfg.Calendar.DefaultActivityID)
			fmt.Printf("jira.api_url: %s\n", cfg.Jira.APIURL)
			fmt.Printf("jira.username: %s\n", cfg.Jira.Username)
			fmt.Printf("jira.search_query: %s\n", cfg.Jira.SearchQuery)
			fmt.Printf("jira.economic_fields: %s\n", cfg.Jira.EconomicFields)
			fmt.Printf("jira.default_activity_id: %d\n", cfg.Jira.DefaultActivityID)
			fmt.Printf("jira.use_worklog: %t\n", cfg.Jira.UseWorklog)
			fmt.Printf("economic.agreement: %s\n", cfg.Economic.Agreement)
			fmt.Printf("economic.username: %s\n", cfg.Economic.Username)
			fmt.Printf("economic.default_project_id: %d\n", cfg.Economic.DefaultProjectID)
			fmt.Printf("economic.append_title_for_activities: %s\n", cfg.Economic.AppendTitleForActivities)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
