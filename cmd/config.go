package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage econsync configuration file values.",
	Long: `Create, edit and display the econsync configuration file.

The configuration stores the calendar provider and credentials, the id
extraction patterns and defaults, the JIRA connection, and the Economic
agreement credentials.`,
	Example: `
  # Create default config in $HOME/.econsync.yaml
  econsync config create

  # Show active config and source file
  econsync config show

  # Open active config in editor (creates example if missing)
  econsync config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
