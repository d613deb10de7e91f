package main

import (
	"fmt"

	"github.com/jonathan/post-curator/internal/observability"
	"github.com/jonathan/post-curator/internal/review"
	"github.com/jonathan/post-curator/internal/types"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List records waiting for review",
	Long: "Lists review-store records in the given status (Draft by default), oldest first, " +
		"with their IDs and source URLs. Change a record's status to Approved in the store to publish it.",
	RunE: runReview,
}

var reviewStatus string

func init() {
	reviewCmd.Flags().StringVar(&reviewStatus, "status", string(types.StatusDraft), "Status to list (Draft, Approved or Posted)")

	rootCmd.AddCommand(reviewCmd)
}

// pendingRecords keeps the records in status, preserving store order.
func pendingRecords(records []review.Record, status types.Status) []review.Record {
	var out []review.Record
	for _, rec := range records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}

func runReview(cmd *cobra.Command, _ []string) error {
	status, ok := types.ParseStatus(reviewStatus)
	if !ok {
		return fmt.Errorf("unknown status %q", reviewStatus)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	store, release, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	records, err := store.List(ctx)
	if err != nil {
		return err
	}
	pending := pendingRecords(records, status)

	out := cmd.OutOrStdout()
	if len(pending) == 0 {
		fmt.Fprintf(out, "No %s records in %s\n", status, store.Name())
		return nil
	}

	observability.NewPrinter(out).PrintRecords(fmt.Sprintf("%s RECORDS: %d", status, len(pending)), pending)
	for i, rec := range pending {
		fmt.Fprintf(out, "%d. %s\n   ID: %s\n", i+1, rec.Title, rec.ID)
		if rec.SourceURL != "" {
			fmt.Fprintf(out, "   Source: %s\n", rec.SourceURL)
		}
	}
	return nil
}
