package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"expoplan/output"
	"expoplan/storage"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the staged schedule from SQLite to CSV/Excel",
	Long: `Export staged import data as a report file.

Modes:
- attendees: attendee ranking by number of distinct sessions attended
- sessions: all staged sessions with review flags
- registrations: every person/session/booth row

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export the attendee ranking to CSV
  expoplan export --mode attendees --output ./attendees.csv

  # Export sessions to Excel
  expoplan export --mode sessions --output ./sessions.xlsx

  # Force Excel format independent of extension
  expoplan export --mode registrations --format excel --output ./registrations.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = output.FormatForPath(exportOutput)
		}

		store, err := storage.OpenSQLite(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.LoadStagedImport()
		if errors.Is(err, storage.ErrNoStagedImport) {
			return fmt.Errorf("nothing staged in %s; run \"expoplan import\" first", exportDBPath)
		}
		if err != nil {
			return err
		}

		table, err := output.BuildTable(exportMode, snap)
		if err != nil {
			return err
		}

		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}
		if err := writer.Write(exportOutput, table); err != nil {
			return err
		}

		fmt.Printf("Export completed. Rows: %d, Mode: %s, Format: %s, File: %s\n",
			len(table.Rows), exportMode, format, exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "attendees", "Export mode: attendees|sessions|registrations")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "./expoplan.db", "Path to local SQLite staging database")

	_ = exportCmd.MarkFlagRequired("output")
}
