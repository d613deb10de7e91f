// Package pipeline provides the high-level orchestration for drafting runs:
// gather candidates, score and select, compose, then deliver for review.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/post-curator/internal/dedupe"
	"github.com/jonathan/post-curator/internal/discovery"
	"github.com/jonathan/post-curator/internal/drafting"
	"github.com/jonathan/post-curator/internal/observability"
	"github.com/jonathan/post-curator/internal/selection"
	"github.com/jonathan/post-curator/internal/types"
)

// Article sources
const (
	SourceAuto   = "auto"
	SourceManual = "manual"
)

// ErrNoCandidates is returned when nothing survives gathering and filtering.
var ErrNoCandidates = errors.New("no usable articles found")

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Discoverer lists recent feed entries. *discovery.Discoverer implements it.
type Discoverer interface {
	Discover(ctx context.Context) []discovery.Discovered
}

// Runner wires the collaborators of a drafting run.
type Runner struct {
	// Discoverer is required for auto-sourced runs
	Discoverer Discoverer
	Fetcher    discovery.ArticleFetcher
	Composer   drafting.Composer
	Sink       *Sink
	// Ledger drops already-staged URLs before scoring; nil disables it
	Ledger dedupe.Ledger

	Out        io.Writer
	Verbose    bool
	Warn       func(string)
	OnProgress ProgressCallback
}

// ArticleOptions selects the articles of one run
type ArticleOptions struct {
	Source string
	URLs   []string
	Count  int
}

// Result summarizes a completed run
type Result struct {
	Gathered int                     `json:"gathered"`
	Selected []types.ScoredCandidate `json:"selected,omitempty"`
	Drafts   []types.Draft           `json:"drafts"`
	Delivery *Delivery               `json:"delivery"`
}

// emitProgress calls the progress callback if configured
func (r *Runner) emitProgress(step, category, message string, content any) {
	if r.OnProgress != nil {
		r.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

//nolint:errcheck // progress output
func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out(), format, args...)
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

func (r *Runner) warn(msg string) {
	if r.Warn != nil {
		r.Warn(msg)
	}
}

// checkHype warns about drafts that slipped past the prompt's wording rules.
func (r *Runner) checkHype(drafts []types.Draft) {
	for _, w := range drafting.CheckHype(drafts) {
		r.warn(w)
	}
}

// RunArticles runs the article pipeline end to end.
func (r *Runner) RunArticles(ctx context.Context, opts ArticleOptions) (*Result, error) {
	if opts.Count <= 0 {
		opts.Count = selection.DefaultCount
	}
	if opts.Source == "" {
		opts.Source = SourceAuto
	}
	if opts.Source == SourceManual && len(opts.URLs) == 0 {
		return nil, fmt.Errorf("manual source needs at least one URL")
	}

	// Step 1: Gather candidates
	r.printf("Step 1/5: Gathering articles (%s)...\n", opts.Source)
	candidates, err := r.gather(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.emitProgress("gather", "articles", fmt.Sprintf("Fetched %d articles", len(candidates)), nil)

	// Step 2: Filter unscoreable and already-staged articles
	r.printf("Step 2/5: Filtering %d articles...\n", len(candidates))
	usable := types.FilterScoreable(candidates)
	if r.Ledger != nil {
		before := len(usable)
		usable = dedupe.Filter(ctx, r.Ledger, usable, r.Warn)
		if dropped := before - len(usable); dropped > 0 {
			r.printf("  Skipped %d already-staged articles\n", dropped)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoCandidates
	}

	// Step 3: Score and select
	r.printf("Step 3/5: Scoring and selecting up to %d of %d articles...\n", opts.Count, len(usable))
	selected, err := selection.SelectBalanced(usable, opts.Count, selection.TechnicalTarget(opts.Count))
	if err != nil {
		return nil, fmt.Errorf("selection failed: %w", err)
	}
	if r.Verbose {
		observability.NewPrinter(r.out()).PrintScored(selected)
	}
	r.emitProgress("select", "articles", fmt.Sprintf("Selected %d articles", len(selected)), selected)

	// Step 4: Compose
	r.printf("Step 4/5: Composing drafts (%s)...\n", r.Composer.Name())
	drafts, err := r.Composer.ComposeArticles(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("drafting failed: %w", err)
	}
	r.checkHype(drafts)
	if r.Verbose {
		observability.NewPrinter(r.out()).PrintDrafts(drafts)
	}

	// Step 5: Deliver
	r.printf("Step 5/5: Delivering %d drafts (%s)...\n", len(drafts), r.Sink.Mode)
	delivery, err := r.Sink.Deliver(ctx, drafts)
	if err != nil {
		return nil, err
	}
	r.emitProgress("deliver", "drafts", describeDelivery(delivery, len(drafts)), delivery)

	return &Result{
		Gathered: len(candidates),
		Selected: selected,
		Drafts:   drafts,
		Delivery: delivery,
	}, nil
}

func (r *Runner) gather(ctx context.Context, opts ArticleOptions) ([]types.Candidate, error) {
	if r.Fetcher == nil {
		return nil, fmt.Errorf("no article fetcher configured")
	}

	switch opts.Source {
	case SourceManual:
		items := make([]discovery.Discovered, 0, len(opts.URLs))
		for _, u := range opts.URLs {
			if u = strings.TrimSpace(u); u != "" {
				items = append(items, discovery.Discovered{URL: u})
			}
		}
		return discovery.FetchDiscovered(ctx, r.Fetcher, items, r.Warn), nil
	case SourceAuto:
		if r.Discoverer == nil {
			return nil, fmt.Errorf("no discoverer configured")
		}
		found := r.Discoverer.Discover(ctx)
		r.printf("  Discovered %d recent articles\n", len(found))
		if len(found) == 0 {
			return nil, ErrNoCandidates
		}
		return discovery.FetchDiscovered(ctx, r.Fetcher, found, r.Warn), nil
	}
	return nil, fmt.Errorf("unknown article source %q (want auto or manual)", opts.Source)
}

// RunStory composes and delivers one non-article post.
func (r *Runner) RunStory(ctx context.Context, req drafting.StoryRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.printf("Composing %s post (%s)...\n", strings.ToLower(string(req.Kind)), r.Composer.Name())
	draft, err := r.Composer.ComposeStory(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("drafting failed: %w", err)
	}

	drafts := []types.Draft{draft}
	r.checkHype(drafts)
	delivery, err := r.Sink.Deliver(ctx, drafts)
	if err != nil {
		return nil, err
	}
	r.emitProgress("deliver", "drafts", describeDelivery(delivery, 1), delivery)
	return &Result{Drafts: drafts, Delivery: delivery}, nil
}

// Deliver stages or writes an already-composed draft, such as a polish result.
func (r *Runner) Deliver(ctx context.Context, d types.Draft) (*Result, error) {
	drafts := []types.Draft{d}
	delivery, err := r.Sink.Deliver(ctx, drafts)
	if err != nil {
		return nil, err
	}
	return &Result{Drafts: drafts, Delivery: delivery}, nil
}

func describeDelivery(d *Delivery, total int) string {
	switch d.Mode {
	case ModeFile:
		return fmt.Sprintf("Saved %d drafts to %s", total, d.Path)
	case ModeConsole:
		return fmt.Sprintf("Printed %d drafts", total)
	}
	msg := fmt.Sprintf("Staged %d of %d drafts for review", len(d.RecordIDs), total)
	if d.Failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", d.Failed)
	}
	return msg
}

// Summary is the human-readable delivery line for CLI output.
func (res *Result) Summary() string {
	return describeDelivery(res.Delivery, len(res.Drafts))
}
