// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/post-curator/internal/lifecycle"
	"github.com/jonathan/post-curator/internal/ranking"
	"github.com/jonathan/post-curator/internal/review"
	"github.com/jonathan/post-curator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens a line to width runes
func clip(line string, width int) string {
	if utf8.RuneCountInString(line) <= width {
		return line
	}
	return string([]rune(line)[:width-3]) + "..."
}

// PrintScored outputs the top scored candidates with their score, category and score notes.
func (p *Printer) PrintScored(scored []types.ScoredCandidate) {
	if len(scored) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates scored: %d\n\n", len(scored)))

	count := min(len(scored), maxItemsToShow)
	for i := 0; i < count; i++ {
		sc := scored[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, sc.Candidate.Title))
		sb.WriteString(fmt.Sprintf("    Score: %.1f (%s)\n", sc.Score, sc.Category))
		if notes := ranking.Notes(ranking.Explain(&sc.Candidate)); notes != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", notes))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(scored) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(scored)-maxItemsToShow))
	}

	p.printBox("SCORED CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDrafts outputs the composed drafts before staging.
func (p *Printer) PrintDrafts(drafts []types.Draft) {
	if len(drafts) == 0 {
		return
	}

	var sb strings.Builder
	for i, d := range drafts {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, d.Kind, d.Title))
		first := strings.SplitN(strings.TrimSpace(d.PostText), "\n", 2)[0]
		sb.WriteString(fmt.Sprintf("   %s\n", first))
		sb.WriteString(fmt.Sprintf("   %d chars\n", utf8.RuneCountInString(d.PostText)))
	}

	p.printBox("COMPOSED DRAFTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecords outputs review records grouped as a status table.
func (p *Printer) PrintRecords(title string, records []review.Record) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	for _, r := range records {
		status := string(r.Status)
		if status == "" {
			status = "(none)"
		}
		sb.WriteString(fmt.Sprintf("%-9s %s  %s\n", status, r.CreatedAt.Format("2006-01-02"), r.Title))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTick outputs one poll tick summary.
func (p *Printer) PrintTick(s lifecycle.TickSummary) {
	var sb strings.Builder
	if s.Error != "" {
		sb.WriteString(fmt.Sprintf("Cycle skipped: %s\n", s.Error))
	}
	sb.WriteString(fmt.Sprintf("Approved: %d\n", s.Approved))
	sb.WriteString(fmt.Sprintf("Posted:   %d\n", s.Posted))
	sb.WriteString(fmt.Sprintf("Failed:   %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Skipped:  %d", s.Skipped))

	p.printBox("POLL SUMMARY", sb.String())
}
