package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/post-curator/internal/types"
)

// technicalThreshold is how many distinct technical indicators make a candidate technical on their own
const technicalThreshold = 3

// longFormWords is the word count above which a single technical indicator suffices
const longFormWords = 800

// TechnicalIndicators are the terms used to classify candidates as technical.
var TechnicalIndicators = []string{
	"framework", "architecture", "implementation", "deployment", "code",
	"algorithm", "api", "programming", "software", "scalability",
	"optimization", "performance", "benchmark", "validation", "testing",
	"debug", "infrastructure", "model", "training", "dataset", "neural",
	"transformer", "pytorch", "tensorflow", "keras", "scikit", "pandas",
	"research", "study", "paper", "experiment", "mit", "stanford",
	"langchain", "hugging face", "semantic kernel", "encompass",
	"probabilistic", "nondeterminism",
}

// Categorize classifies a candidate as technical or general.
// This is advisory metadata; selection does not enforce a quota with it.
func Categorize(c *types.Candidate) types.Category {
	text := strings.ToLower(c.Title) + " " + strings.ToLower(c.BodyText)
	matches := len(matchTerms(text, TechnicalIndicators))

	if matches >= technicalThreshold || (matches >= 1 && c.WordCount() > longFormWords) {
		return types.CategoryTechnical
	}
	return types.CategoryGeneral
}

// RankCandidates scores and categorizes every candidate and returns them best-first.
// Ties keep their input order.
func RankCandidates(candidates []types.Candidate) []types.ScoredCandidate {
	scored := make([]types.ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		scored = append(scored, types.ScoredCandidate{
			Candidate: *c,
			Score:     Score(c),
			Category:  Categorize(c),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Notes creates a brief explanation of a breakdown for verbose output.
func Notes(b Breakdown) string {
	var parts []string

	switch {
	case b.WordCount >= longWordLimit:
		parts = append(parts, fmt.Sprintf("Substantive length (%d words)", b.WordCount))
	case b.WordCount < thinWordLimit:
		parts = append(parts, fmt.Sprintf("Thin content (%d words)", b.WordCount))
	default:
		parts = append(parts, fmt.Sprintf("%d words", b.WordCount))
	}

	if len(b.Institutions) > 0 {
		parts = append(parts, fmt.Sprintf("Institutions: %s", strings.Join(b.Institutions, ", ")))
	}
	if len(b.Frameworks) > 0 {
		parts = append(parts, fmt.Sprintf("Systems: %s", strings.Join(b.Frameworks, ", ")))
	}
	if len(b.Implementation) > 0 {
		parts = append(parts, fmt.Sprintf("Implementation depth: %d terms", len(b.Implementation)))
	}

	var penalties []string
	if len(b.Clickbait) > 0 {
		penalties = append(penalties, "clickbait")
	}
	if len(b.GenericTopics) > 0 {
		penalties = append(penalties, "generic topic")
	}
	if b.AllCapsTitle {
		penalties = append(penalties, "all-caps title")
	}
	if b.TripleBang {
		penalties = append(penalties, "triple exclamation")
	}
	if len(penalties) > 0 {
		parts = append(parts, "Penalized for "+strings.Join(penalties, ", "))
	}

	return strings.Join(parts, ". ")
}
