package selection

import (
	"fmt"
	"strings"

	"github.com/jonathan/post-curator/internal/ranking"
	"github.com/jonathan/post-curator/internal/types"
)

// Reasoning returns the one-line rationale shown under WHY THIS MATTERS.
func Reasoning(c *types.Candidate) string {
	var reasons []string

	words := c.WordCount()
	if words > 800 {
		reasons = append(reasons, fmt.Sprintf("substantive content (%d words)", words))
	} else if words > 400 {
		reasons = append(reasons, "good depth")
	}

	text := strings.ToLower(c.Title + " " + c.BodyText)
	for _, kw := range ranking.ProfessionalKeywords {
		if strings.Contains(text, kw) {
			reasons = append(reasons, fmt.Sprintf("professional focus (%s)", kw))
			break
		}
	}

	if len(reasons) == 0 {
		return "Selected as best available option"
	}
	return "Selected for " + strings.Join(reasons, ", ")
}
