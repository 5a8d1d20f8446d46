package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage expoplan configuration file values.",
	Long: `Create and display the expoplan configuration file.

The configuration stores application-wide values:
- eventhub.url / eventhub.api_token
- import.default_session_minutes
- import.company_marker
- import.auto_export_after_import`,
	Example: `
  # Create default config in $HOME/.expoplan.yaml
  expoplan config create

  # Show active config and source file
  expoplan config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
