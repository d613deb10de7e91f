package drafting

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/post-curator/internal/rendering"
	"github.com/jonathan/post-curator/internal/selection"
	"github.com/jonathan/post-curator/internal/types"
)

// keyPointMax is the longest key-point sentence taken verbatim
const keyPointMax = 200

var (
	whitespace   = regexp.MustCompile(`\s+`)
	photoCredit  = regexp.MustCompile(`Credit:.*?Alamy`)
	leadingDigit = regexp.MustCompile(`^\d+\s*`)
	aiWord       = regexp.MustCompile(`\bai\b`)
)

// voice pairs an opening and closing sentence for one class of title
type voice struct {
	keywords []string
	opening  string
	closing  string
}

// voices is checked in order; the last entry matches every title.
var voices = []voice{
	{
		keywords: []string{"research", "study", "paper", "findings"},
		opening:  "I just read some research that really made me think.",
		closing:  "What I learned challenges some assumptions about what works in practice.",
	},
	{
		keywords: []string{"open-source", "beats", "outperforms"},
		opening:  "Something I came across today really stuck with me.",
		closing:  "The open-source ecosystem continues to deliver strong alternatives to proprietary solutions.",
	},
	{
		keywords: []string{"report", "index", "survey", "data"},
		opening:  "I've been looking at some data that caught my attention.",
		closing:  "Hard numbers help cut through the noise in fast-moving spaces.",
	},
	{
		keywords: []string{"breakthrough", "advance", "discover"},
		opening:  "I just read about something that could change how we work.",
		closing:  "Progress often comes from unexpected places.",
	},
	{
		keywords: []string{"how", "guide", "tutorial", "best"},
		opening:  "I just came across a practical insight worth sharing.",
		closing:  "Sometimes the most valuable advances are in better methods, not just new models.",
	},
	{
		keywords: []string{"risk", "challenge", "problem", "concern"},
		opening:  "I've been thinking about an important consideration.",
		closing:  "Understanding limitations is just as important as celebrating capabilities.",
	},
	{
		opening: "I just read something that's worth your time.",
		closing: "Articles like this help us look beyond the headlines to what's actually happening.",
	},
}

// voiceFor returns the opener/closer pair for a title.
func voiceFor(title string) voice {
	lower := strings.ToLower(title)
	for _, v := range voices {
		if len(v.keywords) == 0 {
			return v
		}
		for _, kw := range v.keywords {
			if strings.Contains(lower, kw) {
				return v
			}
		}
	}
	return voices[len(voices)-1]
}

// KeyPoint picks the single most quotable sentence from an article body.
//
// Steps:
//  1. collapse whitespace, drop photo credits and a leading number
//  2. split on ". " and keep sentences longer than 20 characters (runes)
//  3. return the first sentence between 60 and 200 characters, else the
//     first sentence cut at a word boundary
func KeyPoint(body string) string {
	text := strings.TrimSpace(whitespace.ReplaceAllString(body, " "))
	text = photoCredit.ReplaceAllString(text, "")
	text = leadingDigit.ReplaceAllString(text, "")

	var sentences []string
	for _, s := range strings.Split(text, ". ") {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > 20 {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return rendering.TruncateWords(text, keyPointMax)
	}

	for _, s := range sentences {
		if n := utf8.RuneCountInString(s); n > 60 && n < keyPointMax {
			return s + "."
		}
	}

	first := rendering.TruncateWords(sentences[0], keyPointMax)
	if strings.HasSuffix(first, ".") {
		return first
	}
	return first + "."
}

// SummaryPoints returns the 4-6 bracketed review bullets for an article.
func SummaryPoints(c *types.Candidate) []string {
	points := []string{fmt.Sprintf("[Article about %s...]", firstRunes(c.Title, 50))}

	lower := strings.ToLower(c.BodyText)
	has := func(terms ...string) bool {
		for _, t := range terms {
			if strings.Contains(lower, t) {
				return true
			}
		}
		return false
	}

	if has("research", "study") {
		points = append(points, "[• Research-based analysis with data and findings]")
	}
	if aiWord.MatchString(lower) || has("machine learning") {
		points = append(points, "[• Focuses on AI/ML applications and implications]")
	}
	if has("open source", "open-source") {
		points = append(points, "[• Discusses open-source developments]")
	}
	if has("model") {
		points = append(points, "[• Covers model capabilities or limitations]")
	}
	if has("method", "approach") {
		points = append(points, "[• Proposes methods or approaches]")
	}
	if has("challenge", "problem") {
		points = append(points, "[• Addresses key challenges in the field]")
	}

	if len(points) < 4 {
		points = append(points, "[• Provides practical insights for professionals]")
	}
	for len(points) < 4 {
		points = append(points, "[• Additional context in full article]")
	}
	if len(points) > 6 {
		points = points[:6]
	}
	return points
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ArticlePost assembles the template post: opener, key point, closer, source URL.
func ArticlePost(c *types.Candidate) string {
	v := voiceFor(c.Title)
	return strings.Join([]string{
		v.opening,
		"",
		KeyPoint(c.BodyText),
		"",
		v.closing,
		"",
		c.URL,
	}, "\n")
}

// TemplateComposer drafts deterministically without external calls.
type TemplateComposer struct {
	now func() time.Time
}

// NewTemplateComposer creates a template composer. A nil clock uses time.Now.
func NewTemplateComposer(now func() time.Time) *TemplateComposer {
	return &TemplateComposer{now: nowFunc(now)}
}

// Name identifies the strategy in output
func (t *TemplateComposer) Name() string {
	return string(StrategyTemplate)
}

// ComposeArticles drafts one post per candidate, in input order.
func (t *TemplateComposer) ComposeArticles(_ context.Context, candidates []types.ScoredCandidate) ([]types.Draft, error) {
	drafts := make([]types.Draft, 0, len(candidates))
	for i := range candidates {
		drafts = append(drafts, t.articleDraft(&candidates[i]))
	}
	return drafts, nil
}

func (t *TemplateComposer) articleDraft(sc *types.ScoredCandidate) types.Draft {
	c := &sc.Candidate
	return types.Draft{
		Kind:  types.KindArticle,
		Title: c.Title,
		Sections: []types.Section{
			{Heading: rendering.HeadingSummary, Content: strings.Join(SummaryPoints(c), "\n")},
			{Heading: rendering.HeadingWhy, Content: selection.Reasoning(c)},
		},
		PostText:  rendering.Sanitize(ArticlePost(c)),
		Status:    types.StatusDraft,
		CreatedAt: t.now(),
		SourceURL: c.URL,
		Score:     sc.Score,
	}
}

// ComposeStory renders the deterministic template for a story request.
func (t *TemplateComposer) ComposeStory(_ context.Context, req StoryRequest) (types.Draft, error) {
	if err := req.Validate(); err != nil {
		return types.Draft{}, err
	}
	return storyDraft(&req, templateStory(&req), t.now()), nil
}

// storyDraft wraps post text for a story request into a draft.
func storyDraft(req *StoryRequest, post string, now time.Time) types.Draft {
	return types.Draft{
		Kind:      req.Kind,
		Title:     req.title(),
		Sections:  req.sections(),
		PostText:  rendering.Sanitize(strings.TrimSpace(post)),
		Status:    types.StatusDraft,
		CreatedAt: now,
	}
}
