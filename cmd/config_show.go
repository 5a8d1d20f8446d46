package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"expoplan/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  expoplan config show
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
			fmt.Printf("eventhub.url: %s\n", cfg.EventHub.URL)
			token := "(not set)"
			if cfg.EventHub.APIToken != "" {
				token = "(set)"
			}
			fmt.Printf("eventhub.api_token: %s\n", token)
			fmt.Printf("import.default_session_minutes: %d\n", cfg.Import.DefaultSessionMinutes)
			fmt.Printf("import.company_marker: %s\n", cfg.Import.CompanyMarker)
			fmt.Printf("import.auto_export_after_import: %t\n", cfg.Import.AutoExportAfterImport)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
