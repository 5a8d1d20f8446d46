package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"expoplan/config"
	"expoplan/importer"
	"expoplan/output"
	"expoplan/storage"
)

var (
	importInputs     []string
	importDBPath     string
	importMarker     string
	importMinutes    int
	importExportMode string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import schedule workbooks into a local SQLite staging database",
	Long: `Read schedule workbooks, normalize sessions, booths, and registrations,
and stage the result in SQLite for review before committing.

Each sheet is one event day; the sheet name carries the date. Sessions whose
time or date could not be resolved are staged with review flags so they can
be corrected before "expoplan commit" applies the plan to EventHub.

Importing replaces any previously staged run.`,
	Example: `
  # Import one workbook
  expoplan import -i schedule.xlsx

  # Import several day workbooks into a custom staging database
  expoplan import -i monday.xlsx -i tuesday.xlsx --db ./expo.db

  # Override the company marker and default session length for this run
  expoplan import -i schedule.xlsx --marker "*" --minutes 45

  # Explicitly export the attendee ranking after import
  expoplan import -i schedule.xlsx --export on

  # Import with custom config file
  expoplan --configFile ./custom-expoplan.yaml import -i schedule.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		marker := cfg.Import.CompanyMarker
		if strings.TrimSpace(importMarker) != "" {
			marker = importMarker
		}
		minutes := cfg.Import.DefaultSessionMinutes
		if importMinutes > 0 {
			minutes = importMinutes
		}

		result, err := importer.Run(importInputs, &importer.ExcelReader{}, importer.Options{
			CompanyMarker:         marker,
			DefaultSessionMinutes: minutes,
		})
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(importDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		snap := result.Snapshot(time.Now())
		if err := store.ReplaceStagedImport(snap); err != nil {
			return err
		}

		fmt.Printf("Import completed. Run: %s, Sheets: %d (%d skipped), Sessions: %d, Booths: %d, Registrations: %d\n",
			result.RunID,
			result.SheetsProcessed,
			result.SheetsSkipped,
			len(result.Sessions),
			len(result.Booths),
			len(result.Registrations),
		)

		review := 0
		for _, session := range result.Sessions {
			if session.TimeNeedsReview || session.DateNeedsReview {
				review++
			}
		}
		if review > 0 {
			fmt.Printf("%d session(s) need review before commit.\n", review)
		}
		for _, problem := range result.Errors {
			fmt.Fprintln(os.Stderr, "Warning:", problem)
		}

		shouldExport, err := resolveExportMode(importExportMode, cfg.Import.AutoExportAfterImport)
		if err != nil {
			return err
		}
		if shouldExport {
			table, err := output.BuildTable(output.ModeAttendees, snap)
			if err != nil {
				return err
			}
			if err := (&output.CSVWriter{}).Write("./attendees.csv", table); err != nil {
				return err
			}
			fmt.Printf("Auto-export completed. Attendees: %d, File: ./attendees.csv\n", len(table.Rows))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input workbook path (repeatable)")
	importCmd.Flags().StringVar(&importDBPath, "db", "./expoplan.db", "Path to local SQLite staging database")
	importCmd.Flags().StringVar(&importMarker, "marker", "", "Company marker override for this run (default from config)")
	importCmd.Flags().IntVar(&importMinutes, "minutes", 0, "Default session length in minutes (default from config)")
	importCmd.Flags().StringVar(&importExportMode, "export", "auto", "Export attendee ranking after import: auto|on|off")

	_ = importCmd.MarkFlagRequired("input")
}

func resolveExportMode(mode string, configDefault bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return configDefault, nil
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid export mode %q (supported: auto|on|off)", mode)
	}
}
