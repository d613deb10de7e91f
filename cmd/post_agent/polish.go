package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonathan/post-curator/internal/drafting"
	"github.com/spf13/cobra"
)

var polishCmd = &cobra.Command{
	Use:   "polish",
	Short: "Polish a draft you wrote while keeping your voice",
	Long: "Sends your own draft to the first configured provider for a light edit and stages the result " +
		"next to the original. Without a provider the draft is staged unchanged.",
	RunE: runPolish,
}

var (
	polishInput   string
	polishText    string
	polishContext string
	polishOpts    draftFlags
)

func init() {
	polishCmd.Flags().StringVarP(&polishInput, "in", "i", "", "Path to a text file holding the draft")
	polishCmd.Flags().StringVar(&polishText, "text", "", "The draft text")
	polishCmd.Flags().StringVar(&polishContext, "context", "", "Optional note about what the post is for")
	polishOpts.register(polishCmd)

	rootCmd.AddCommand(polishCmd)
}

func runPolish(cmd *cobra.Command, _ []string) error {
	text, err := polishSource()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sess, err := newSession(ctx, &polishOpts)
	if err != nil {
		return err
	}
	defer sess.close()

	if sess.client == nil {
		warn("no generative provider configured; the draft is staged unchanged")
	}

	draft, err := drafting.Polish(ctx, sess.client, text, polishContext, time.Now())
	if err != nil {
		return err
	}

	res, err := sess.runner.Deliver(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s\n", res.Summary())
	return nil
}

// polishSource returns the draft from --text or --in
func polishSource() (string, error) {
	if (polishInput == "") == (polishText == "") {
		return "", fmt.Errorf("exactly one of --in or --text is required")
	}
	if polishText != "" {
		return polishText, nil
	}
	data, err := os.ReadFile(polishInput)
	if err != nil {
		return "", fmt.Errorf("failed to read draft file %s: %w", polishInput, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("draft file %s is empty", polishInput)
	}
	return string(data), nil
}
