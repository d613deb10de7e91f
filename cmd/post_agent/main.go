// Package main provides the entry point for the post_agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "post_agent",
	Short: "Curate, draft and publish LinkedIn posts",
	Long: "post_agent discovers and scores articles, drafts posts from them or from personal prompts, " +
		"stages the drafts for human review, and publishes the ones a reviewer approves.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-file", "", "Path to a JSON config file (environment values override it)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
