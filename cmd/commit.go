package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"expoplan/commit"
	"expoplan/config"
	"expoplan/eventhub"
	"expoplan/internal/identity"
	"expoplan/storage"
)

var (
	commitDBPath  string
	commitURL     string
	commitToken   string
	commitTimeout time.Duration
	commitDryRun  bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Apply the staged schedule to EventHub",
	Long: `Read the staged import from SQLite and apply it to EventHub in six phases:
booths, sessions, capacity links, attendees, registrations, event date range.

The phases are not atomic: records persisted by an earlier phase stay
persisted when a later phase fails. A booth or session batch that fails
entirely aborts the remaining phases. Registrations whose session or
attendee was not created are skipped, not failed.

In --dry-run mode the staged data is validated and the planned batch sizes
are printed; no request is sent.`,
	Example: `
  # Apply the staged plan
  expoplan commit

  # Validate the staged plan without network calls
  expoplan commit --dry-run

  # Override the EventHub endpoint for this run
  expoplan commit --url https://staging.eventhub.example.com --token $EVENTHUB_TOKEN
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(commitDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.LoadStagedImport()
		if errors.Is(err, storage.ErrNoStagedImport) {
			return fmt.Errorf("nothing staged in %s; run \"expoplan import\" first", commitDBPath)
		}
		if err != nil {
			return err
		}

		if commitDryRun {
			if err := commit.ValidateSnapshot(snap); err != nil {
				return err
			}
			identities := identity.Collapse(snap.Registrations)
			fmt.Println("Commit dry-run mode: validating staged data without network calls.")
			fmt.Printf("  Run:                 %s (imported %s)\n", snap.RunID, snap.ImportedAt.Format(time.RFC3339))
			fmt.Printf("  Booths to create:    %d\n", len(snap.Booths))
			fmt.Printf("  Sessions to create:  %d\n", len(snap.Sessions))
			fmt.Printf("  Capacity links:      %d\n", len(snap.Sessions)*len(snap.Booths))
			fmt.Printf("  Attendees:           %d\n", len(identities))
			fmt.Printf("  Registrations:       %d\n", len(snap.Registrations))
			return nil
		}

		baseURL := cfg.EventHub.URL
		if strings.TrimSpace(commitURL) != "" {
			baseURL = commitURL
		}
		token := cfg.EventHub.APIToken
		if strings.TrimSpace(commitToken) != "" {
			token = commitToken
		}

		client, err := eventhub.NewClient(eventhub.ClientConfig{
			BaseURL:   baseURL,
			APIToken:  token,
			UserAgent: "expoplan-commit/1.0",
		})
		if err != nil {
			return err
		}

		service := commit.NewService(client)
		service.Logf = func(format string, args ...any) {
			fmt.Printf(format+"\n", args...)
		}

		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()

		summary, err := service.Run(ctx, snap)
		if err != nil {
			return err
		}

		fmt.Printf("Commit report for run %s:\n", summary.RunID)
		for _, class := range summary.Classes() {
			fmt.Printf("  %-14s success=%d failed=%d skipped=%d\n",
				class.Label+":", class.Class.Success, class.Class.Failed, class.Class.Skipped)
			for _, message := range class.Class.Errors {
				fmt.Printf("    - %s\n", message)
			}
		}

		if summary.Aborted {
			return fmt.Errorf("commit aborted: %s", summary.AbortReason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)

	commitCmd.Flags().StringVar(&commitDBPath, "db", "./expoplan.db", "Path to local SQLite staging database")
	commitCmd.Flags().StringVar(&commitURL, "url", "", "Override EventHub URL from config")
	commitCmd.Flags().StringVar(&commitToken, "token", "", "Override EventHub API token from config")
	commitCmd.Flags().DurationVar(&commitTimeout, "timeout", 120*time.Second, "Timeout for the whole commit run")
	commitCmd.Flags().BoolVar(&commitDryRun, "dry-run", false, "Validate staged data and print planned batch sizes without writing")
}
