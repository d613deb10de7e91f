package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jonathan/post-curator/internal/dedupe"
	"github.com/jonathan/post-curator/internal/rendering"
	"github.com/jonathan/post-curator/internal/review"
	"github.com/jonathan/post-curator/internal/types"
)

// Mode selects where composed drafts go
type Mode string

// Output modes
const (
	ModeStore   Mode = "store"
	ModeFile    Mode = "file"
	ModeConsole Mode = "console"
)

// ParseMode validates an output mode name. Empty means store.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return ModeStore, nil
	case ModeStore, ModeFile, ModeConsole:
		return m, nil
	}
	return "", fmt.Errorf("unknown output mode %q (want store, file or console)", name)
}

// Sink delivers drafts to the review store, a pack file or the console.
type Sink struct {
	Mode Mode
	// Store and Ledger are used in store mode; a nil Ledger skips URL recording
	Store  review.Store
	Ledger dedupe.Ledger
	// Path is the pack file in file mode; empty picks a timestamped name
	Path string
	Out  io.Writer
	Warn func(string)
	Now  func() time.Time
}

// Delivery reports where drafts went
type Delivery struct {
	Mode      Mode     `json:"mode"`
	RecordIDs []string `json:"record_ids,omitempty"`
	Path      string   `json:"path,omitempty"`
	Failed    int      `json:"failed,omitempty"`
}

// Deliver hands drafts to the configured destination. In store mode each
// draft becomes one review record; a failure is reported and the rest continue.
func (s *Sink) Deliver(ctx context.Context, drafts []types.Draft) (*Delivery, error) {
	if len(drafts) == 0 {
		return nil, fmt.Errorf("no drafts to deliver")
	}
	now := s.now()

	switch s.Mode {
	case ModeStore, "":
		return s.stage(ctx, drafts, now)
	case ModeFile:
		path := s.Path
		if path == "" {
			path = DefaultPackName(now)
		}
		pack, err := PackText(drafts, now)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(pack+"\n"), 0644); err != nil {
			return nil, fmt.Errorf("failed to write drafts to %s: %w", path, err)
		}
		return &Delivery{Mode: ModeFile, Path: path}, nil
	case ModeConsole:
		pack, err := PackText(drafts, now)
		if err != nil {
			return nil, err
		}
		out := s.Out
		if out == nil {
			out = os.Stdout
		}
		if _, err := fmt.Fprintln(out, pack); err != nil {
			return nil, fmt.Errorf("failed to print drafts: %w", err)
		}
		return &Delivery{Mode: ModeConsole}, nil
	}
	return nil, fmt.Errorf("unknown output mode %q", s.Mode)
}

func (s *Sink) stage(ctx context.Context, drafts []types.Draft, now time.Time) (*Delivery, error) {
	if s.Store == nil {
		return nil, fmt.Errorf("store output needs a review store")
	}

	d := &Delivery{Mode: ModeStore}
	for i := range drafts {
		draft := &drafts[i]
		id, err := review.Stage(ctx, s.Store, draft, now)
		if err != nil {
			s.warn(fmt.Sprintf("failed to stage %q: %v", draft.Title, err))
			d.Failed++
			continue
		}
		d.RecordIDs = append(d.RecordIDs, id)

		if s.Ledger != nil && draft.SourceURL != "" {
			if err := s.Ledger.Record(ctx, draft.SourceURL); err != nil {
				s.warn(fmt.Sprintf("failed to record staged URL %s: %v", draft.SourceURL, err))
			}
		}
	}

	if len(d.RecordIDs) == 0 {
		return d, fmt.Errorf("failed to stage any of %d drafts in %s store", len(drafts), s.Store.Name())
	}
	return d, nil
}

// PackText renders drafts as one approval pack. All-article batches use the
// numbered article layout; anything else renders each draft and joins them with the rule.
func PackText(drafts []types.Draft, generated time.Time) (string, error) {
	allArticles := true
	for i := range drafts {
		if drafts[i].Kind != types.KindArticle {
			allArticles = false
			break
		}
	}
	if allArticles {
		return rendering.FormatArticlePack(drafts), nil
	}

	parts := make([]string, 0, len(drafts))
	for i := range drafts {
		text, err := rendering.Render(&drafts[i], generated)
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimRight(text, "\n"))
	}
	return strings.Join(parts, "\n\n"+rendering.Rule+"\n\n"), nil
}

// DefaultPackName is the file name used when no save path is given.
func DefaultPackName(now time.Time) string {
	return fmt.Sprintf("linkedin_drafts_%s.txt", now.Format("20060102_150405"))
}

func (s *Sink) warn(msg string) {
	if s.Warn != nil {
		s.Warn(msg)
	}
}

func (s *Sink) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
