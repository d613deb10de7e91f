package main

import (
	"fmt"

	"github.com/jonathan/post-curator/internal/config"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Draft every post in a YAML content plan",
	Long:  "Validates a YAML content plan and drafts each entry in order. A failing entry is reported and the rest continue.",
	RunE:  runPlan,
}

var (
	planPath string
	planOpts draftFlags
)

func init() {
	planCmd.Flags().StringVarP(&planPath, "config", "c", "", "Path to the content plan YAML (required)")
	planOpts.register(planCmd)

	if err := planCmd.MarkFlagRequired("config"); err != nil {
		panic(fmt.Sprintf("failed to mark config flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	plan, err := config.LoadPlan(planPath)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sess, err := newSession(ctx, &planOpts)
	if err != nil {
		return err
	}
	defer sess.close()
	attachArticleSources(sess)

	report, err := sess.runner.RunPlan(ctx, plan)
	if report != nil {
		fmt.Printf("\nContent plan: %d succeeded, %d failed\n", report.Succeeded, report.Failed)
		for _, e := range report.Entries {
			if e.Err != nil {
				fmt.Printf("  %d. %s: %v\n", e.Index, e.Label, e.Err)
			}
		}
	}
	return err
}
