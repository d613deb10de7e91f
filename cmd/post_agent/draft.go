package main

import (
	"fmt"

	"github.com/jonathan/post-curator/internal/discovery"
	"github.com/jonathan/post-curator/internal/fetch"
	"github.com/jonathan/post-curator/internal/pipeline"
	"github.com/jonathan/post-curator/internal/selection"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft posts from the best recent articles",
	Long: "Runs the article pipeline: discover (or fetch the given URLs), score and select, " +
		"compose one post per article, and stage the drafts for review.",
	RunE: runDraft,
}

var (
	draftSource string
	draftURLs   string
	draftCount  int
	draftOpts   draftFlags
)

func init() {
	draftCmd.Flags().StringVar(&draftSource, "source", pipeline.SourceAuto, "Article source: auto (RSS discovery) or manual (--urls)")
	draftCmd.Flags().StringVar(&draftURLs, "urls", "", "Comma-separated article URLs for --source manual")
	draftCmd.Flags().IntVar(&draftCount, "count", selection.DefaultCount, "Number of articles to draft")
	draftOpts.register(draftCmd)

	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sess, err := newSession(ctx, &draftOpts)
	if err != nil {
		return err
	}
	defer sess.close()
	attachArticleSources(sess)

	res, err := sess.runner.RunArticles(ctx, pipeline.ArticleOptions{
		Source: draftSource,
		URLs:   splitList(draftURLs),
		Count:  draftCount,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", res.Summary())
	return nil
}

// attachArticleSources gives the runner its discoverer and fetcher
func attachArticleSources(sess *session) {
	sess.runner.Discoverer = discovery.New(discoveryOptions(sess.cfg.Discovery))
	sess.runner.Fetcher = fetch.NewFetcher(sess.cfg.Discovery.UseBrowser, sess.runner.Verbose)
}
