package llm

import "strings"

// preambles are lead-in lines models add despite being told to return only the post
var preambles = []string{
	"here's",
	"here is",
	"sure,",
	"sure!",
	"certainly",
}

// CleanResponse strips markdown code fences, a chatty lead-in line and
// wrapping quotes from generated post text.
func CleanResponse(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := strings.ToLower(strings.TrimSpace(text[:idx]))
		for _, p := range preambles {
			if strings.HasPrefix(first, p) && strings.HasSuffix(first, ":") {
				text = strings.TrimSpace(text[idx+1:])
				break
			}
		}
	}

	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) &&
		strings.Count(text, `"`) == 2 {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}

	return text
}
