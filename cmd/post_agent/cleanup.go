package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jonathan/post-curator/internal/observability"
	"github.com/jonathan/post-curator/internal/review"
	"github.com/jonathan/post-curator/internal/types"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old drafts from the review store",
	Long: "Lists records older than --older-than days that are still drafts (or carry an unknown status), " +
		"or that match --status. Posted records are never removed. Nothing is deleted without --no-dry-run.",
	RunE: runCleanup,
}

var (
	cleanupOlderThan int
	cleanupStatus    string
	cleanupNoDryRun  bool
)

func init() {
	cleanupCmd.Flags().IntVar(&cleanupOlderThan, "older-than", 30, "Minimum record age in days")
	cleanupCmd.Flags().StringVar(&cleanupStatus, "status", "", "Only remove records in this status (Draft or Approved)")
	cleanupCmd.Flags().BoolVar(&cleanupNoDryRun, "no-dry-run", false, "Actually delete the selected records")

	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	if cleanupOlderThan < 0 {
		return fmt.Errorf("--older-than must be non-negative")
	}
	var status types.Status
	if cleanupStatus != "" {
		s, ok := types.ParseStatus(cleanupStatus)
		if !ok {
			return fmt.Errorf("unknown status %q", cleanupStatus)
		}
		status = s
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

	result, err := review.Cleanup(ctx, store, review.CleanupOptions{
		OlderThan: time.Duration(cleanupOlderThan) * 24 * time.Hour,
		Status:    status,
		DryRun:    !cleanupNoDryRun,
	})
	if err != nil {
		return err
	}

	if len(result.Selected) == 0 {
		fmt.Printf("No records older than %d days to clean up in %s\n", cleanupOlderThan, store.Name())
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintRecords("CLEANUP CANDIDATES", result.Selected)
	if !cleanupNoDryRun {
		fmt.Printf("Dry run: %d records would be deleted. Re-run with --no-dry-run to delete them.\n", len(result.Selected))
		return nil
	}

	for id, ferr := range result.Failed {
		warn(fmt.Sprintf("failed to delete %s: %v", id, ferr))
	}
	fmt.Printf("Deleted %d of %d records\n", result.Deleted, len(result.Selected))
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d deletions failed", len(result.Failed))
	}
	return nil
}
