// Package parsing recovers the publishable post text from a staged review record.
//
// Two stored layouts are understood:
//
//   - current: a "LINKEDIN POST:" marker line, the payload, then a blank line followed
//     by the next recognized marker (or the end of the record)
//   - legacy: a "LinkedIn Draft Post:" marker followed by payload lines up to an
//     "OPTION N" line or two consecutive blank lines
package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/post-curator/internal/rendering"
)

const legacyMarker = "LinkedIn Draft Post:"

var (
	// currentMarker matches a whole marker line; the payload starts after its newline.
	// Titles or drafts that merely end in "LinkedIn post" do not match.
	currentMarker = regexp.MustCompile(`(?im)^[ \t]*LINKEDIN POST[ \t]*:?[ \t]*\r?\n`)

	// terminator matches the blank line plus marker that ends a current-layout payload
	terminator = regexp.MustCompile(`(?i)\n[ \t]*\n(?:ARTICLE \d+|WHY THIS MATTERS|Article Details|OPTION|={70}|APPROVAL INSTRUCTIONS|EDITING INSTRUCTIONS)`)

	legacyOption = regexp.MustCompile(`^OPTION\s+\d+`)
)

// metadataPrefixes are label lines that belong to the review layout, not the post
var metadataPrefixes = []string{
	"Article Title:",
	"Article URL:",
	"Article Details",
}

// ExtractPostText returns the cleaned publishable text of the first post in a
// stored record. The current layout is tried first, then the legacy one.
// When neither yields any text the error wraps ErrNoPostText.
func ExtractPostText(record string) (string, error) {
	record = strings.ReplaceAll(record, "\r\n", "\n")

	if text, ok := extractCurrent(record); ok {
		return text, nil
	}
	if text, ok := extractLegacy(record); ok {
		return text, nil
	}
	return "", &Error{Message: "record matches no known layout", Cause: ErrNoPostText}
}

// extractCurrent handles the LINKEDIN POST layout.
func extractCurrent(record string) (string, bool) {
	loc := currentMarker.FindStringIndex(record)
	if loc == nil {
		return "", false
	}

	rest := strings.TrimLeft(record[loc[1]:], " \t\n")
	if end := terminator.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}

	lines := strings.Split(rest, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isMetadataLine(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}

	text := rendering.CleanForPublish(strings.Join(kept, "\n"))
	return text, text != ""
}

// extractLegacy handles the LinkedIn Draft Post layout.
func extractLegacy(record string) (string, bool) {
	idx := strings.Index(record, legacyMarker)
	if idx < 0 {
		return "", false
	}

	section := strings.TrimSpace(record[idx+len(legacyMarker):])
	var lines []string
	blanks := 0
	for _, raw := range strings.Split(section, "\n") {
		line := strings.TrimSpace(raw)
		if legacyOption.MatchString(line) && line != "OPTION 1" {
			break
		}
		if line == "" {
			blanks++
			if blanks >= 2 {
				break
			}
			lines = append(lines, line)
			continue
		}
		blanks = 0
		lines = append(lines, line)
	}

	text := rendering.CleanForPublish(strings.Join(lines, "\n"))
	return text, text != ""
}

func isMetadataLine(line string) bool {
	for _, prefix := range metadataPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
