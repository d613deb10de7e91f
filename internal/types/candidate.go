// Package types provides type definitions for structured data used throughout the post curator.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Category classifies a candidate for output-mix balancing
type Category string

const (
	// CategoryTechnical marks implementation/research heavy content
	CategoryTechnical Category = "technical"
	// CategoryGeneral marks everything else
	CategoryGeneral Category = "general"
)

// Candidate is one discovered piece of source content prior to scoring.
// URL is the unique key. Candidates are immutable once created.
type Candidate struct {
	Title       string     `json:"title" validate:"required"`
	URL         string     `json:"url" validate:"required,url"`
	BodyText    string     `json:"body_text"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ScoredCandidate pairs a Candidate with its deterministic score and category.
// It only exists while a selection is being made.
type ScoredCandidate struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
	Category  Category  `json:"category"`
}

var validate = validator.New()

// Validate checks the candidate invariants: a non-empty title and a well-formed URL.
func (c *Candidate) Validate() error {
	return validate.Struct(c)
}

// WordCount returns the number of whitespace-separated words in the body.
func (c *Candidate) WordCount() int {
	return len(strings.Fields(c.BodyText))
}

// HasBody reports whether the candidate carries any body text.
// Candidates without body text are excluded before scoring.
func (c *Candidate) HasBody() bool {
	return strings.TrimSpace(c.BodyText) != ""
}

// FilterScoreable drops candidates that fail validation or have no body text.
func FilterScoreable(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for i := range candidates {
		if !candidates[i].HasBody() {
			continue
		}
		if err := candidates[i].Validate(); err != nil {
			continue
		}
		out = append(out, candidates[i])
	}
	return out
}
