package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonathan/post-curator/internal/config"
	"github.com/jonathan/post-curator/internal/db"
	"github.com/jonathan/post-curator/internal/dedupe"
	"github.com/jonathan/post-curator/internal/drafting"
	"github.com/jonathan/post-curator/internal/llm"
	"github.com/jonathan/post-curator/internal/pipeline"
	"github.com/jonathan/post-curator/internal/review"
	"github.com/spf13/cobra"
)

// commandContext is cancelled on interrupt or SIGTERM
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// loadConfig builds the process configuration once per command
func loadConfig() (*config.Config, error) {
	return config.Load(configPath, os.Getenv)
}

func warn(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
}

// openStore connects the configured review store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (review.Store, func(), error) {
	if err := cfg.RequireStore(); err != nil {
		return nil, nil, err
	}

	sc := cfg.Store
	switch sc.Backend {
	case config.BackendMemory:
		return review.NewMemoryStore(nil), func() {}, nil
	case config.BackendSQLite:
		s, err := review.OpenSQLite(sc.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		database, err := db.Connect(ctx, sc.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s, err := review.NewPostgresStore(ctx, database)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return s, database.Close, nil
	case config.BackendNotion:
		s, err := review.NewNotionStore(review.NotionConfig{
			APIKey:     sc.NotionAPIKey,
			DatabaseID: sc.NotionDatabaseID,
			Warn:       warn,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown review store %q", sc.Backend)
}

// openLedger connects Redis when configured and falls back to an in-process
// ledger with a warning otherwise.
func openLedger(ctx context.Context, cfg *config.Config) (dedupe.Ledger, func()) {
	if cfg.Store.RedisURL == "" {
		return dedupe.NewMemoryLedger(), func() {}
	}
	l, err := dedupe.ConnectRedis(ctx, cfg.Store.RedisURL)
	if err != nil {
		warn(fmt.Sprintf("staged-URL ledger unavailable, using in-memory ledger: %v", err))
		return dedupe.NewMemoryLedger(), func() {}
	}
	return l, func() { _ = l.Close() }
}

// draftFlags are the composition and output flags shared by draft, story, plan and polish
type draftFlags struct {
	strategy string
	provider string
	output   string
	save     string
	verbose  bool
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmdFlags := cmd.Flags()
	cmdFlags.StringVar(&f.strategy, "strategy", string(drafting.StrategyAuto), "Drafting strategy: auto, template or generative")
	cmdFlags.StringVar(&f.provider, "provider", "", "Generative provider: anthropic, openai, gemini or template (default: first configured)")
	cmdFlags.StringVar(&f.output, "output", string(pipeline.ModeStore), "Where drafts go: store, file or console")
	cmdFlags.StringVar(&f.save, "save", "", "Pack file path for --output file (default: linkedin_drafts_<timestamp>.txt)")
	cmdFlags.BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// session holds what a drafting command opened; close releases it
type session struct {
	cfg    *config.Config
	runner *pipeline.Runner
	client llm.Client
	closes []func()
}

func (s *session) close() {
	for i := len(s.closes) - 1; i >= 0; i-- {
		s.closes[i]()
	}
}

// newSession resolves the composer and output sink for a drafting command.
func newSession(ctx context.Context, f *draftFlags) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	mode, err := pipeline.ParseMode(f.output)
	if err != nil {
		return nil, err
	}

	res, err := drafting.Resolve(drafting.Strategy(strings.ToLower(f.strategy)), strings.ToLower(f.provider), cfg.LLM.Credentials())
	if err != nil {
		return nil, err
	}
	if f.verbose {
		fmt.Printf("[VERBOSE] Drafting strategy: %s %s\n", res.Strategy, res.Provider)
	}

	s := &session{cfg: cfg}
	composer, client, err := drafting.New(ctx, res, drafting.Options{Warn: warn})
	if err != nil {
		return nil, err
	}
	s.client = client
	if client != nil {
		s.closes = append(s.closes, func() { _ = client.Close() })
	}

	sink := &pipeline.Sink{Mode: mode, Path: f.save, Out: os.Stdout, Warn: warn}
	runner := &pipeline.Runner{
		Composer: composer,
		Sink:     sink,
		Out:      os.Stdout,
		Verbose:  f.verbose,
		Warn:     warn,
	}

	if mode == pipeline.ModeStore {
		store, release, err := openStore(ctx, cfg)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closes = append(s.closes, release)

		ledger, releaseLedger := openLedger(ctx, cfg)
		s.closes = append(s.closes, releaseLedger)

		sink.Store = store
		sink.Ledger = ledger
		runner.Ledger = ledger
		if f.verbose {
			fmt.Printf("[VERBOSE] Review store: %s\n", store.Name())
		}
	}

	s.runner = runner
	return s, nil
}

// splitList parses a comma or whitespace separated flag value
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
