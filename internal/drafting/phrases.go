package drafting

import (
	"fmt"
	"strings"

	"github.com/jonathan/post-curator/internal/types"
)

// HypePhrases are words the drafting prompts tell the model to avoid.
// Generated text is checked against them after composition.
var HypePhrases = []string{
	"revolutionary",
	"game-changing",
	"game changer",
	"unbelievable",
	"amazing",
	"mind-blowing",
	"disruptive",
}

// FindPhrases returns the phrases that occur in text, case-insensitively,
// in list order. Duplicate phrases are reported once. Returns nil when none match.
func FindPhrases(text string, phrases []string) []string {
	if len(phrases) == 0 || text == "" {
		return nil
	}

	normalized := strings.ToLower(text)
	seen := make(map[string]bool)
	var found []string
	for _, phrase := range phrases {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p == "" || seen[p] {
			continue
		}
		if strings.Contains(normalized, p) {
			found = append(found, phrase)
			seen[p] = true
		}
	}
	return found
}

// CheckHype reports one warning line per draft whose post text uses a hype phrase.
func CheckHype(drafts []types.Draft) []string {
	var warnings []string
	for i := range drafts {
		found := FindPhrases(drafts[i].PostText, HypePhrases)
		if len(found) == 0 {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("draft %q uses hype phrasing: %s",
			drafts[i].Title, strings.Join(found, ", ")))
	}
	return warnings
}
