package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/post-curator/internal/fetch"
	"github.com/jonathan/post-curator/internal/observability"
	"github.com/jonathan/post-curator/internal/ranking"
	"github.com/jonathan/post-curator/internal/schemas"
	"github.com/jonathan/post-curator/internal/selection"
	"github.com/jonathan/post-curator/internal/types"
	contentschemas "github.com/jonathan/post-curator/schemas"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score articles and show which would be selected",
	Long:  "Fetches the given URLs (or reads a JSON candidate list), scores each article, and marks the ones a drafting run would select.",
	RunE:  runScore,
}

var (
	scoreURLs       string
	scoreInput      string
	scoreOutput     string
	scoreCount      int
	scoreUseBrowser bool
	scoreVerbose    bool
)

func init() {
	scoreCmd.Flags().StringVar(&scoreURLs, "urls", "", "Comma-separated article URLs to fetch")
	scoreCmd.Flags().StringVarP(&scoreInput, "input", "i", "", "Path to a JSON list of candidates (title, url, body_text)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Optional path to write the scored candidates as JSON")
	scoreCmd.Flags().IntVar(&scoreCount, "count", selection.DefaultCount, "Number of articles a run would select")
	scoreCmd.Flags().BoolVar(&scoreUseBrowser, "use-browser", false, "Render script-heavy pages in a headless browser")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print the score breakdown of each article")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	if (scoreURLs == "") == (scoreInput == "") {
		return fmt.Errorf("exactly one of --urls or --input is required")
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var candidates []types.Candidate
	if scoreInput != "" {
		loaded, err := loadCandidates(scoreInput)
		if err != nil {
			return err
		}
		candidates = loaded
	} else {
		inputs := make([]fetch.Input, 0)
		for _, u := range splitList(scoreURLs) {
			inputs = append(inputs, fetch.Input{URL: u})
		}
		fmt.Printf("Fetching %d articles...\n", len(inputs))
		candidates = fetch.NewFetcher(scoreUseBrowser, scoreVerbose).FetchAll(ctx, inputs, warn)
	}

	usable := types.FilterScoreable(candidates)
	if len(usable) == 0 {
		return fmt.Errorf("no scoreable articles (each needs a title, a valid URL and body text)")
	}

	ranked := ranking.RankCandidates(usable)
	selected, err := selection.SelectBalanced(usable, scoreCount, selection.TechnicalTarget(scoreCount))
	if err != nil {
		return err
	}
	picked := make(map[string]bool, len(selected))
	for _, sc := range selected {
		picked[sc.Candidate.URL] = true
	}

	for i, sc := range ranked {
		mark := " "
		if picked[sc.Candidate.URL] {
			mark = "*"
		}
		fmt.Printf("%s %2d. [%6.1f] %-9s %s\n", mark, i+1, sc.Score, sc.Category, sc.Candidate.Title)
		if picked[sc.Candidate.URL] {
			fmt.Printf("        %s\n", selection.Reasoning(&sc.Candidate))
		}
	}
	fmt.Printf("\n* selected %d of %d\n", len(selected), len(ranked))

	if scoreVerbose {
		observability.NewPrinter(os.Stdout).PrintScored(ranked)
	}

	if scoreOutput != "" {
		data, err := json.MarshalIndent(ranked, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal scores to JSON: %w", err)
		}
		if err := os.WriteFile(scoreOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write scores to %s: %w", scoreOutput, err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Successfully scored %d articles to %s\n", len(ranked), scoreOutput)
	}
	return nil
}

// loadCandidates reads a candidate list after validating it against the candidates schema
func loadCandidates(path string) ([]types.Candidate, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates file %s: %w", path, err)
	}
	if err := schemas.ValidateJSONString(contentschemas.Candidates, string(content)); err != nil {
		return nil, fmt.Errorf("invalid candidates file %s: %w", path, err)
	}

	var candidates []types.Candidate
	if err := json.Unmarshal(content, &candidates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidates JSON: %w", err)
	}
	return candidates, nil
}
