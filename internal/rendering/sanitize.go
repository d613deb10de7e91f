// Package rendering turns drafts into the staged approval-pack text and
// normalizes free text for the publishing target.
package rendering

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxPostLength is the publishing target's character limit
const MaxPostLength = 3000

// typographic maps code points the publishing target renders badly onto plain ASCII.
// No replacement contains a mapped code point, so Sanitize is idempotent.
var typographic = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u201b", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u201f", `"`,
	"\u2014", "--",
	"\u2013", "-",
	"\u2026", "...",
	"\u00a0", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
)

var (
	inlineSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// Sanitize replaces typographic quotes, dashes, ellipses and non-breaking spaces with
// ASCII equivalents and strips zero-width characters.
func Sanitize(text string) string {
	return typographic.Replace(text)
}

// StripHTML removes markup and returns the text content.
// Text without a tag opener is returned unchanged.
func StripHTML(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Find("body").Text()
}

// CleanForPublish prepares text for the publishing endpoint: typographic
// sanitization, markup and control-character removal, whitespace collapse that
// keeps line structure, and truncation to MaxPostLength characters.
func CleanForPublish(text string) string {
	if text == "" {
		return ""
	}

	text = Sanitize(text)
	text = StripHTML(text)
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	return Truncate(text, MaxPostLength)
}

// Truncate shortens text to at most limit characters, ending with "..." when cut.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	if limit <= 3 {
		return string([]rune(text)[:limit])
	}
	return string([]rune(text)[:limit-3]) + "..."
}

// TruncateWords shortens text to at most limit characters on a word boundary,
// appending "..." when cut.
func TruncateWords(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	cut := string([]rune(text)[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
