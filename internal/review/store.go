// Package review stages drafts in an external review store and reads back
// their approval status. Each adapter translates its own status representation
// into types.Status so callers never branch on the storage schema.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/post-curator/internal/rendering"
	"github.com/jonathan/post-curator/internal/types"
)

// ErrNotFound is returned when a record ID does not exist in the store.
var ErrNotFound = errors.New("record not found")

// Error describes a failed store operation on one record
type Error struct {
	RecordID string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.RecordID != "" {
		msg = fmt.Sprintf("record %s: %s", e.RecordID, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("review store: %s: %v", msg, e.Cause)
	}
	return "review store: " + msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Record is a staged draft as the review store holds it.
// Status is empty when the stored value is missing or unrecognized.
type Record struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Kind      types.DraftKind `json:"kind,omitempty"`
	Status    types.Status    `json:"status"`
	Text      string          `json:"text"`
	SourceURL string          `json:"source_url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRecord is the content of a record to create. New records always start in Draft.
type NewRecord struct {
	Title     string
	Kind      types.DraftKind
	Text      string
	SourceURL string
}

// Store is the system of record for staged drafts and their status.
type Store interface {
	// Name identifies the backend in output
	Name() string
	// Create stores a record in Draft status and returns its ID
	Create(ctx context.Context, rec NewRecord) (string, error)
	// List returns every record in the collection. Text is always set for
	// Approved records; backends may leave it empty for other statuses.
	List(ctx context.Context) ([]Record, error)
	// UpdateStatus overwrites the status of one record
	UpdateStatus(ctx context.Context, id string, status types.Status) error
	// Delete removes one record
	Delete(ctx context.Context, id string) error
}

// maxTitleChars caps record titles; review tools truncate long titles badly
const maxTitleChars = 100

// Stage renders a draft into its approval pack and creates a Draft record for it.
// The draft's ID is set to the new record ID.
func Stage(ctx context.Context, s Store, d *types.Draft, generated time.Time) (string, error) {
	if err := d.ReadyForApproval(); err != nil {
		return "", err
	}

	text, err := rendering.Render(d, generated)
	if err != nil {
		return "", err
	}

	id, err := s.Create(ctx, NewRecord{
		Title:     recordTitle(d, generated),
		Kind:      d.Kind,
		Text:      text,
		SourceURL: d.SourceURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to stage %q: %w", d.Title, err)
	}
	d.ID = id
	d.Status = types.StatusDraft
	return id, nil
}

func recordTitle(d *types.Draft, generated time.Time) string {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = "LinkedIn Post - " + generated.Format("2006-01-02")
	}
	return rendering.TruncateWords(title, maxTitleChars)
}

// statusOf translates a stored status string; unknown values map to the empty status.
func statusOf(raw string) types.Status {
	if s, ok := types.ParseStatus(strings.TrimSpace(raw)); ok {
		return s
	}
	return ""
}

// kindOf translates a stored kind string; unknown values map to the empty kind.
func kindOf(raw string) types.DraftKind {
	switch k := types.DraftKind(strings.TrimSpace(raw)); k {
	case types.KindArticle, types.KindPersonal, types.KindColleague, types.KindTech, types.KindCommunity, types.KindPolish:
		return k
	}
	return ""
}

func notFound(id string) error {
	return &Error{RecordID: id, Message: "not found", Cause: ErrNotFound}
}
