package cmd

import "github.com/spf13/cobra"

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate against Economic via interactive browser login.",
	Long: `Authentication helpers for Economic session cookies.

Use "auth login" to perform an interactive browser login and save auth state.
Use "auth show-cookies" to print the Cookie header for direct requests.`,
}

func init() {
	rootCmd.AddCommand(authCmd)
}
