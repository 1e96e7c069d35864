package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"econsync/config"
	"econsync/economic"
)

var authShowCookiesStateFile string

var authShowCookiesCmd = &cobra.Command{
	Use:   "show-cookies",
	Short: "Print session cookies as HTTP Cookie header.",
	Long: `Read auth state JSON and print the cookie header required by the Economic
web endpoints.

Output format:
ASPSESSIONIDxxxxxxxx=<...>; <other cookies>`,
	Example: `
  # Print cookie header from default auth state file
  econsync auth show-cookies
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		stateFile, err := resolveDefaultAuthStatePath(authShowCookiesStateFile)
		if err != nil {
			return err
		}

		host, err := economicHost(cfg.Economic.BaseURL)
		if err != nil {
			return err
		}

		header, err := economic.SessionCookieHeaderFromStateFile(stateFile, host)
		if err != nil {
			return err
		}
		fmt.Println(header)
		return nil
	},
}

func init() {
	authCmd.AddCommand(authShowCookiesCmd)

	authShowCookiesCmd.Flags().StringVar(&authShowCookiesStateFile, "state-file", "", "Path to auth state JSON (default: $HOME/.econsync/economic-auth-state.json)")
}
