// Package lifecycle owns the Approved -> Posted transition: it polls the
// review store, publishes approved drafts and marks them Posted.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/post-curator/internal/logging"
	"github.com/jonathan/post-curator/internal/parsing"
	"github.com/jonathan/post-curator/internal/publish"
	"github.com/jonathan/post-curator/internal/review"
	"github.com/jonathan/post-curator/internal/types"
	"golang.org/x/time/rate"
)

const (
	// DefaultInterval is the time between poll ticks
	DefaultInterval = 60 * time.Second
	// DefaultPublishEvery is the minimum spacing of publish calls
	DefaultPublishEvery = 5 * time.Second
)

// Options configures a Poller
type Options struct {
	Interval time.Duration
	// PublishLimit caps publish calls per second across ticks; zero uses
	// one call per DefaultPublishEvery
	PublishLimit rate.Limit
	Logger       *slog.Logger
	Now          func() time.Time
}

// TickSummary counts what one poll tick did. Skipped counts approved records
// with no extractable post text.
type TickSummary struct {
	At       time.Time `json:"at"`
	Approved int       `json:"approved"`
	Posted   int       `json:"posted"`
	Failed   int       `json:"failed"`
	Skipped  int       `json:"skipped"`
	// Error is set when the store could not be listed and the tick was skipped
	Error string `json:"error,omitempty"`
}

// Stalled reports whether approved records existed but nothing was posted
func (s TickSummary) Stalled() bool {
	return s.Approved > 0 && s.Posted == 0
}

// Poller publishes approved records. Only one poller should run against a
// given store; the processed set is per process.
type Poller struct {
	store     review.Store
	publisher publish.Publisher
	interval  time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	processed map[string]struct{}
	ticks     int
	last      TickSummary
}

// NewPoller creates a poller over a store and publisher.
func NewPoller(store review.Store, publisher publish.Publisher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.PublishLimit == 0 {
		opts.PublishLimit = rate.Every(DefaultPublishEvery)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Poller{
		store:     store,
		publisher: publisher,
		interval:  opts.Interval,
		limiter:   rate.NewLimiter(opts.PublishLimit, 1),
		logger:    opts.Logger,
		now:       opts.Now,
		processed: make(map[string]struct{}),
	}
}

// Run ticks immediately and then every interval until ctx is cancelled.
// An in-flight publish completes before Run returns.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "store", p.store.Name(), "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.Tick(ctx)
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one poll cycle.
func (p *Poller) Tick(ctx context.Context) TickSummary {
	summary := TickSummary{At: p.now()}
	defer p.record(&summary)

	records, err := p.store.List(ctx)
	if err != nil {
		summary.Error = err.Error()
		p.logger.Error("failed to list review store, skipping cycle", "err", err)
		return summary
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		if p.IsProcessed(rec.ID) || rec.Status != types.StatusApproved {
			continue
		}
		summary.Approved++

		text, err := parsing.ExtractPostText(rec.Text)
		if err != nil {
			summary.Skipped++
			p.logger.Warn("no publishable text in record", "record_id", rec.ID, "title", rec.Title, "err", err)
			continue
		}

		if err := p.limiter.Wait(ctx); err != nil {
			break
		}

		if err := p.publishRecord(ctx, rec, text); err != nil {
			summary.Failed++
			continue
		}
		summary.Posted++
	}

	p.logger.Info("poll tick",
		"approved", summary.Approved,
		"posted", summary.Posted,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary
}

// publishRecord publishes one record and marks it Posted. Once started it is
// not interrupted by cancellation so a post is never left without its status write.
func (p *Poller) publishRecord(ctx context.Context, rec review.Record, text string) error {
	ctx = context.WithoutCancel(ctx)

	result, err := p.publisher.Publish(ctx, text)
	if err != nil {
		p.logger.Error("publish failed, will retry next tick", "record_id", rec.ID, "title", rec.Title, "err", err)
		return err
	}

	// marked before the status write so a failed write cannot cause a second post
	p.markProcessed(rec.ID)

	if err := p.store.UpdateStatus(ctx, rec.ID, types.StatusPosted); err != nil {
		p.logger.Warn("published but failed to mark Posted", "record_id", rec.ID, "title", rec.Title, "url", result.CanonicalURL, "err", err)
		return nil
	}
	if result.PostID == "" {
		p.logger.Warn("published without a post id", "record_id", rec.ID, "title", rec.Title)
		return nil
	}
	p.logger.Info("published", "record_id", rec.ID, "title", rec.Title, "url", result.CanonicalURL)
	return nil
}

// IsProcessed reports whether the record was published by this process
func (p *Poller) IsProcessed(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.processed[id]
	return ok
}

func (p *Poller) markProcessed(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed[id] = struct{}{}
}

func (p *Poller) record(s *TickSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks++
	p.last = *s
}

// Snapshot is the poller state exposed to the status endpoint
type Snapshot struct {
	Store     string      `json:"store"`
	Interval  string      `json:"interval"`
	Ticks     int         `json:"ticks"`
	Processed int         `json:"processed"`
	Last      TickSummary `json:"last_tick"`
}

// Snapshot returns the current poller state
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Store:     p.store.Name(),
		Interval:  p.interval.String(),
		Ticks:     p.ticks,
		Processed: len(p.processed),
		Last:      p.last,
	}
}
