/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"expoplan/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "expoplan",
	Short: "Import exhibition schedule spreadsheets and apply them to EventHub.",
	Long: `
**********************************************
*               EXPOPLAN                     *
**********************************************

This CLI reads exhibition schedule workbooks (Excel), normalizes sessions,
booths, and registrations into a local SQLite staging database for review,
and applies the staged plan to EventHub in batches. Staged data can also be
exported to CSV or Excel reports.

Workbook layout expectations:
- one sheet per event day, sheet name carrying the date
- a header row with "Booth: <id>" cells marking booth columns
- session blocks anchored in the first column, people listed under each booth
`,
	Example: `
  # Create configuration file
  expoplan config create

  # Import schedule workbooks into the staging database
  expoplan import -i monday.xlsx -i tuesday.xlsx

  # Inspect what would be applied, without network calls
  expoplan commit --dry-run

  # Apply the staged plan to EventHub
  expoplan commit

  # Export the attendee ranking
  expoplan export --mode attendees --output ./attendees.csv
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.expoplan.yaml, then ./.expoplan.yaml)")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	return cmd.Name() == "import" || cmd.Name() == "commit"
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".expoplan" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".expoplan")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: expoplan config create")
	}
}
