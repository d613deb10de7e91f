// Package ranking provides deterministic substance scoring and categorization of article candidates.
package ranking

import (
	"strings"
	"unicode"

	"github.com/jonathan/post-curator/internal/types"
)

// Length tier boundaries (body word count) and their contributions
const (
	thinWordLimit        = 200
	shortWordLimit       = 500
	mediumWordLimit      = 1000
	longWordLimit        = 1500
	thinPenalty          = -20.0
	shortBonus           = 10.0
	mediumBonus          = 40.0
	longBonus            = 60.0
	substantiveBonus     = 80.0
	institutionWeight    = 15.0
	frameworkWeight      = 10.0
	professionalWeight   = 3.0
	implementationWeight = 5.0
	clickbaitPenalty     = -15.0
	genericPenalty       = -10.0
	allCapsPenalty       = -15.0
	exclamationPenalty   = -10.0
	numericTitleBonus    = 5.0
)

// InstitutionTerms signal research-institution credibility.
var InstitutionTerms = []string{
	"mit", "stanford", "caltech", "carnegie mellon", "harvard", "berkeley",
	"oxford", "cambridge", "eth zurich", "university", "institute",
	"laboratory", "research lab", "researchers",
}

// FrameworkTerms signal a named system or framework.
var FrameworkTerms = []string{
	"framework", "architecture", "system", "platform", "probabilistic",
	"nondeterminism", "encompass", "transformer", "attention mechanism",
	"neural architecture", "multi-agent", "agent framework", "orchestration",
}

// ProfessionalKeywords is the broad professional-relevance vocabulary.
// It is also used to build selection reasoning.
var ProfessionalKeywords = []string{
	"implementation", "deployment", "production", "real-world", "case study",
	"success story", "proven", "tested", "validated", "worked", "achieving",
	"semantic kernel", "langchain", "hugging face", "openai", "anthropic",
	"pytorch", "tensorflow", "api", "platform", "tool", "library", "framework",
	"research", "study", "paper", "analysis", "breakthrough", "findings",
	"data", "experiment", "algorithm", "model", "methodology", "results",
	"conclusion", "published", "journal", "conference", "technical",
	"engineering", "development", "architecture", "scalability",
	"optimization", "code", "tutorial", "guide", "how to",
}

// ImplementationTerms signal implementation and evaluation depth.
var ImplementationTerms = []string{
	"deployment", "production", "real-world", "case study", "code",
	"algorithm", "implementation", "scalability", "optimization",
	"performance", "evaluation", "benchmark", "tested", "validated",
	"proven", "results", "data",
}

// ClickbaitPhrases are penalized when found in the title.
var ClickbaitPhrases = []string{
	"you won't believe", "shocking", "mind-blowing", "will change everything",
	"this will blow your mind", "scientists hate", "one weird trick",
	"must read", "unbelievable", "incredible", "amazing", "revolutionary",
}

// GenericTopicPhrases are hype topics penalized when found in the title.
var GenericTopicPhrases = []string{
	"ai will replace", "ai taking over", "future of work", "ai revolution",
	"ai is here",
}

// Breakdown holds every component that contributes to a candidate's score
type Breakdown struct {
	WordCount      int      `json:"word_count"`
	Length         float64  `json:"length"`
	Institutions   []string `json:"institutions,omitempty"`
	Frameworks     []string `json:"frameworks,omitempty"`
	Professional   []string `json:"professional,omitempty"`
	Implementation []string `json:"implementation,omitempty"`
	Clickbait      []string `json:"clickbait,omitempty"`
	GenericTopics  []string `json:"generic_topics,omitempty"`
	AllCapsTitle   bool     `json:"all_caps_title,omitempty"`
	TripleBang     bool     `json:"triple_bang,omitempty"`
	NumericTitle   bool     `json:"numeric_title,omitempty"`
}

// Total sums the breakdown into the final unclamped score.
func (b *Breakdown) Total() float64 {
	total := b.Length
	total += institutionWeight * float64(len(b.Institutions))
	total += frameworkWeight * float64(len(b.Frameworks))
	total += professionalWeight * float64(len(b.Professional))
	total += implementationWeight * float64(len(b.Implementation))
	total += clickbaitPenalty * float64(len(b.Clickbait))
	total += genericPenalty * float64(len(b.GenericTopics))
	if b.AllCapsTitle {
		total += allCapsPenalty
	}
	if b.TripleBang {
		total += exclamationPenalty
	}
	if b.NumericTitle {
		total += numericTitleBonus
	}
	return total
}

// Score returns the deterministic substance score of a candidate.
func Score(c *types.Candidate) float64 {
	b := Explain(c)
	return b.Total()
}

// Explain computes the full scoring breakdown for a candidate.
// It is pure: identical candidates always produce identical breakdowns.
func Explain(c *types.Candidate) Breakdown {
	title := strings.ToLower(c.Title)
	text := title + " " + strings.ToLower(c.BodyText)
	words := c.WordCount()

	return Breakdown{
		WordCount:      words,
		Length:         lengthScore(words),
		Institutions:   matchTerms(text, InstitutionTerms),
		Frameworks:     matchTerms(text, FrameworkTerms),
		Professional:   matchTerms(text, ProfessionalKeywords),
		Implementation: matchTerms(text, ImplementationTerms),
		Clickbait:      matchTerms(title, ClickbaitPhrases),
		GenericTopics:  matchTerms(title, GenericTopicPhrases),
		AllCapsTitle:   isAllCaps(c.Title),
		TripleBang:     strings.Contains(c.Title, "!!!"),
		NumericTitle:   strings.IndexFunc(c.Title, unicode.IsDigit) >= 0,
	}
}

// lengthScore maps a word count onto its length tier.
func lengthScore(words int) float64 {
	switch {
	case words < thinWordLimit:
		return thinPenalty
	case words < shortWordLimit:
		return shortBonus
	case words < mediumWordLimit:
		return mediumBonus
	case words < longWordLimit:
		return longBonus
	default:
		return substantiveBonus
	}
}

// matchTerms returns the vocabulary terms found as substrings of text, in vocabulary order.
func matchTerms(text string, vocabulary []string) []string {
	var matched []string
	for _, term := range vocabulary {
		if strings.Contains(text, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

// isAllCaps reports whether s has at least one cased letter and no lowercase letters.
func isAllCaps(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
