package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/post-curator/internal/config"
	"github.com/jonathan/post-curator/internal/discovery"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List recent articles from the RSS sources",
	Long:  "Reads every configured RSS/Atom source and lists recent entries, newest first. Nothing is fetched or staged.",
	RunE:  runDiscover,
}

var (
	discoverMaxPerSource int
	discoverLimit        int
	discoverDaysBack     int
	discoverOutput       string
)

func init() {
	discoverCmd.Flags().IntVar(&discoverMaxPerSource, "max-per-source", 0, "Entries kept per source (default 5)")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 0, "Maximum entries overall (default 20)")
	discoverCmd.Flags().IntVar(&discoverDaysBack, "days-back", 0, "Skip entries older than this many days (default 7)")
	discoverCmd.Flags().StringVarP(&discoverOutput, "out", "o", "", "Optional path to write the discoveries as JSON")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	dc := cfg.Discovery
	if discoverMaxPerSource > 0 {
		dc.MaxPerSource = discoverMaxPerSource
	}
	if discoverDaysBack > 0 {
		dc.DaysBack = discoverDaysBack
	}
	if discoverLimit > 0 {
		dc.Limit = discoverLimit
	}

	d := discovery.New(discoveryOptions(dc))
	items := d.Discover(ctx)
	if len(items) == 0 {
		return fmt.Errorf("no recent articles found")
	}

	for i, item := range items {
		published := "undated"
		if item.Published != nil {
			published = item.Published.Format("2006-01-02")
		}
		fmt.Printf("%2d. %s\n    %s | %s | %s\n", i+1, item.Title, item.Source, published, item.URL)
	}

	if discoverOutput != "" {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal discoveries to JSON: %w", err)
		}
		if err := os.WriteFile(discoverOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write discoveries to %s: %w", discoverOutput, err)
		}
		fmt.Printf("Saved %d discoveries to %s\n", len(items), discoverOutput)
	}
	return nil
}

// discoveryOptions maps the discovery config onto discoverer options
func discoveryOptions(dc config.DiscoveryConfig) discovery.Options {
	return discovery.Options{
		MaxPerSource: dc.MaxPerSource,
		DaysBack:     dc.DaysBack,
		Limit:        dc.Limit,
		Warn:         warn,
		Progress:     func(msg string) { fmt.Println(msg) },
	}
}
