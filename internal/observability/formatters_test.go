package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/post-curator/internal/lifecycle"
	"github.com/jonathan/post-curator/internal/review"
	"github.com/jonathan/post-curator/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintScored(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var scored []types.ScoredCandidate
	for i := 0; i < 7; i++ {
		scored = append(scored, types.ScoredCandidate{
			Candidate: types.Candidate{Title: "Researchers publish transformer study", BodyText: strings.Repeat("word ", 600)},
			Score:     float64(70 - i),
			Category:  types.CategoryTechnical,
		})
	}

	p.PrintScored(scored)
	output := buf.String()

	assert.Contains(t, output, "SCORED CANDIDATES")
	assert.Contains(t, output, "Candidates scored: 7")
	assert.Contains(t, output, "Score: 70.0 (technical)")
	assert.Contains(t, output, "... and 2 more candidates")
}

func TestPrintScored_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintScored(nil)
	assert.Empty(t, buf.String())
}

func TestPrintDrafts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDrafts([]types.Draft{{Kind: types.KindArticle, Title: "Agents", PostText: "First line\nsecond"}})
	output := buf.String()

	assert.Contains(t, output, "COMPOSED DRAFTS")
	assert.Contains(t, output, "1. [Article] Agents")
	assert.Contains(t, output, "First line")
	assert.NotContains(t, output, "second")
}

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecords("CLEANUP", []review.Record{
		{Title: "Old draft", Status: types.StatusDraft, CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "Junk"},
	})
	output := buf.String()

	assert.Contains(t, output, "Draft     2026-01-02  Old draft")
	assert.Contains(t, output, "(none)")
}

func TestPrintTick(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTick(lifecycle.TickSummary{Approved: 2, Posted: 1, Failed: 1, Error: ""})
	output := buf.String()

	assert.Contains(t, output, "POLL SUMMARY")
	assert.Contains(t, output, "Approved: 2")
	assert.Contains(t, output, "Failed:   1")
	assert.NotContains(t, output, "Cycle skipped")
}

func TestPrintBox_ClipsLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("é", 100))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
