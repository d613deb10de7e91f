// Package discovery finds recent articles in RSS and Atom feeds.
package discovery

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/post-curator/internal/fetch"
	"github.com/jonathan/post-curator/internal/rendering"
	"github.com/jonathan/post-curator/internal/types"
	"github.com/mmcdole/gofeed"
)

// Defaults for a discovery run
const (
	DefaultMaxPerSource = 5
	DefaultDaysBack     = 7
	DefaultLimit        = 20

	// SummaryMaxChars caps the feed summary kept per entry
	SummaryMaxChars = 500
)

// Options configures a discovery run. Zero values take the defaults.
type Options struct {
	Sources      []Source
	MaxPerSource int
	DaysBack     int
	Limit        int
	Timeout      time.Duration
	Now          func() time.Time
	Warn         func(string)
	Progress     func(string)
}

// Discovered is one feed entry that passed the freshness filter.
type Discovered struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Summary   string     `json:"summary"`
	Published *time.Time `json:"published,omitempty"`
	Source    string     `json:"source"`
}

// Discoverer reads feeds with a shared parser.
type Discoverer struct {
	parser *gofeed.Parser
	opts   Options
}

// New creates a Discoverer, filling unset options with defaults.
func New(opts Options) *Discoverer {
	if len(opts.Sources) == 0 {
		opts.Sources = DefaultSources
	}
	if opts.MaxPerSource <= 0 {
		opts.MaxPerSource = DefaultMaxPerSource
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = DefaultDaysBack
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = fetch.DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	parser := gofeed.NewParser()
	parser.UserAgent = fetch.DefaultUserAgent
	parser.Client = &http.Client{Timeout: opts.Timeout}

	return &Discoverer{parser: parser, opts: opts}
}

// FromSource returns up to MaxPerSource fresh entries from one feed.
// At most twice that many entries are inspected.
func (d *Discoverer) FromSource(ctx context.Context, src Source) ([]Discovered, error) {
	feed, err := d.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", src.Name, err)
	}

	cutoff := d.opts.Now().AddDate(0, 0, -d.opts.DaysBack)
	inspect := feed.Items
	if limit := d.opts.MaxPerSource * 2; len(inspect) > limit {
		inspect = inspect[:limit]
	}

	out := make([]Discovered, 0, d.opts.MaxPerSource)
	for _, item := range inspect {
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published != nil && published.Before(cutoff) {
			continue
		}

		link := strings.TrimSpace(item.Link)
		title := strings.TrimSpace(item.Title)
		if link == "" || title == "" {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		out = append(out, Discovered{
			Title:     title,
			URL:       link,
			Summary:   cleanSummary(summary),
			Published: published,
			Source:    src.Name,
		})
		if len(out) >= d.opts.MaxPerSource {
			break
		}
	}
	return out, nil
}

// Discover reads every configured source, merges the entries newest first
// (undated entries last) and caps the result at Limit. A failing source is
// reported through Warn and contributes nothing.
func (d *Discoverer) Discover(ctx context.Context) []Discovered {
	var all []Discovered
	for _, src := range d.opts.Sources {
		if ctx.Err() != nil {
			break
		}
		d.progress(fmt.Sprintf("Fetching from %s...", src.Name))

		items, err := d.FromSource(ctx, src)
		if err != nil {
			d.warn(err.Error())
			continue
		}
		d.progress(fmt.Sprintf("  Found %d articles", len(items)))
		all = append(all, items...)
	}

	SortNewestFirst(all)
	if len(all) > d.opts.Limit {
		all = all[:d.opts.Limit]
	}
	return all
}

// SortNewestFirst orders entries by publish time, newest first, undated last.
// Entries with equal times keep their relative order.
func SortNewestFirst(items []Discovered) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Published, items[j].Published
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// ArticleFetcher retrieves one article as a candidate. *fetch.Fetcher implements it.
type ArticleFetcher interface {
	Fetch(ctx context.Context, in fetch.Input) (*types.Candidate, error)
}

// FetchDiscovered fetches full content for each entry, one at a time.
// Entries that fail or yield too little text are skipped with a warning.
func FetchDiscovered(ctx context.Context, f ArticleFetcher, items []Discovered, warn func(string)) []types.Candidate {
	candidates := make([]types.Candidate, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		c, err := f.Fetch(ctx, fetch.Input{URL: item.URL, Source: item.Source})
		if err != nil {
			if warn != nil {
				label := item.Title
				if label == "" {
					label = item.URL
				}
				warn(fmt.Sprintf("skipped %q: %v", label, err))
			}
			continue
		}
		if c.Title == "" || c.Title == fetch.Untitled {
			c.Title = item.Title
		}
		if c.PublishedAt == nil {
			c.PublishedAt = item.Published
		}
		candidates = append(candidates, *c)
	}
	return candidates
}

// cleanSummary strips markup, collapses whitespace and caps the length.
func cleanSummary(s string) string {
	text := strings.Join(strings.Fields(rendering.StripHTML(s)), " ")
	r := []rune(text)
	if len(r) > SummaryMaxChars {
		text = string(r[:SummaryMaxChars])
	}
	return strings.TrimSpace(text)
}

func (d *Discoverer) warn(msg string) {
	if d.opts.Warn != nil {
		d.opts.Warn(msg)
	}
}

func (d *Discoverer) progress(msg string) {
	if d.opts.Progress != nil {
		d.opts.Progress(msg)
	}
}
