package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/post-curator/internal/config"
	"github.com/jonathan/post-curator/internal/lifecycle"
	"github.com/jonathan/post-curator/internal/logging"
	"github.com/jonathan/post-curator/internal/observability"
	"github.com/jonathan/post-curator/internal/publish"
	"github.com/jonathan/post-curator/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Publish drafts as reviewers approve them",
	Long: "Polls the review store and publishes every Approved record to LinkedIn, marking it Posted. " +
		"With --once it runs a single pass and exits non-zero when approved records could not be posted.",
	RunE: runPoll,
}

var (
	pollInterval   time.Duration
	pollOnce       bool
	pollStatusAddr string
)

func init() {
	pollCmd.Flags().DurationVar(&pollInterval, "interval", 0, "Time between passes (default 60s or POLL_INTERVAL)")
	pollCmd.Flags().BoolVar(&pollOnce, "once", false, "Run one pass and exit")
	pollCmd.Flags().StringVar(&pollStatusAddr, "status-addr", "", "Serve /health and /status on this address, e.g. :8080")

	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequirePublish(); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	store, release, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	interval := cfg.PollInterval
	if pollInterval > 0 {
		interval = pollInterval
	}
	logger := logging.New(cfg.LogLevel, nil)
	poller := lifecycle.NewPoller(store, publisher, lifecycle.Options{Interval: interval, Logger: logger})

	if pollOnce {
		summary := poller.Tick(ctx)
		observability.NewPrinter(os.Stdout).PrintTick(summary)
		if summary.Error != "" {
			return fmt.Errorf("poll failed: %s", summary.Error)
		}
		if summary.Stalled() {
			return fmt.Errorf("%d approved records found but none were posted", summary.Approved)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return poller.Run(gctx)
	})
	if pollStatusAddr != "" {
		srv := server.New(pollStatusAddr, poller, logger)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	fmt.Printf("Polling %s every %s (Ctrl+C to stop)\n", store.Name(), interval)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newPublisher loads the LinkedIn credential and builds the publisher
func newPublisher(cfg *config.Config) (*publish.LinkedIn, error) {
	tokens, err := tokenStore(cfg)
	if err != nil {
		return nil, err
	}
	tok, err := publish.LoadCredential(cfg.Publish.AccessToken, tokens, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to load LinkedIn credential: %w", err)
	}
	return publish.NewLinkedIn(tok)
}

// tokenStore returns the token file store, decrypting with LINKEDIN_TOKEN_KEY when set
func tokenStore(cfg *config.Config) (*publish.TokenStore, error) {
	store := &publish.TokenStore{Path: cfg.Publish.TokenFile}
	if cfg.Publish.TokenKey != "" {
		key, err := publish.ParseKey(cfg.Publish.TokenKey)
		if err != nil {
			return nil, err
		}
		store.Key = key
	}
	return store, nil
}
