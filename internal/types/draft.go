package types

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a staged draft
type Status string

// Status constants. Transitions are monotonic: Draft -> Approved -> Posted.
const (
	StatusDraft    Status = "Draft"
	StatusApproved Status = "Approved"
	StatusPosted   Status = "Posted"
)

// statusOrder gives each known status its position in the lifecycle
var statusOrder = map[Status]int{
	StatusDraft:    0,
	StatusApproved: 1,
	StatusPosted:   2,
}

// ParseStatus maps a stored status name onto a Status.
// Matching is case-insensitive; unknown names return ok=false.
func ParseStatus(name string) (Status, bool) {
	trimmed := strings.TrimSpace(name)
	for s := range statusOrder {
		if strings.EqualFold(string(s), trimmed) {
			return s, true
		}
	}
	return Status(trimmed), false
}

// IsKnown reports whether s is one of the three lifecycle states.
func (s Status) IsKnown() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransition reports whether moving from s to next is a legal single step.
// Only Draft->Approved and Approved->Posted are allowed.
func (s Status) CanTransition(next Status) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to == from+1
}

// DraftKind identifies what a draft was composed from
type DraftKind string

// Draft kinds
const (
	KindArticle   DraftKind = "Article"
	KindPersonal  DraftKind = "Personal"
	KindColleague DraftKind = "Colleague"
	KindTech      DraftKind = "Tech"
	KindCommunity DraftKind = "Community"
	KindPolish    DraftKind = "Polish"
)

// Section is one headed block of a draft's review body
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Draft is a composed post awaiting human approval.
// ID is assigned by the review store on creation.
type Draft struct {
	ID        string    `json:"id,omitempty"`
	Kind      DraftKind `json:"kind"`
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
	PostText  string    `json:"post_text"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	SourceURL string    `json:"source_url,omitempty"`
	// Score is carried for article drafts so reviewers can see why it was picked
	Score float64 `json:"score,omitempty"`
}

// Section returns the content of the first section with the given heading.
func (d *Draft) Section(heading string) (string, bool) {
	for _, s := range d.Sections {
		if s.Heading == heading {
			return s.Content, true
		}
	}
	return "", false
}

// ReadyForApproval enforces the invariant that post text is non-empty
// before a draft can be staged or approved.
func (d *Draft) ReadyForApproval() error {
	if strings.TrimSpace(d.PostText) == "" {
		return fmt.Errorf("draft %q has empty post text", d.Title)
	}
	return nil
}

// PublishResult is returned by a successful publish call
type PublishResult struct {
	PostID       string    `json:"post_id"`
	CanonicalURL string    `json:"canonical_url"`
	PublishedAt  time.Time `json:"published_at"`
}
