package drafting

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/post-curator/internal/llm"
	"github.com/jonathan/post-curator/internal/parsing"
	"github.com/jonathan/post-curator/internal/prompts"
	"github.com/jonathan/post-curator/internal/rendering"
	"github.com/jonathan/post-curator/internal/selection"
	"github.com/jonathan/post-curator/internal/types"
)

// previewChars caps the body text sent per article
const previewChars = 3000

// blockMarker finds the start of each numbered article block in generated output
var blockMarker = regexp.MustCompile(`(?m)^ARTICLE\s+(\d+)\s*:`)

// GenerativeComposer drafts through an LLM provider.
type GenerativeComposer struct {
	client llm.Client
	warn   func(string)
	now    func() time.Time
}

// NewGenerativeComposer creates a composer backed by client.
func NewGenerativeComposer(client llm.Client, opts Options) *GenerativeComposer {
	return &GenerativeComposer{
		client: client,
		warn:   opts.Warn,
		now:    nowFunc(opts.Now),
	}
}

// Name identifies the strategy and model in output
func (g *GenerativeComposer) Name() string {
	return fmt.Sprintf("%s (%s)", StrategyGenerative, g.client.GetModel(llm.TierAdvanced))
}

// ComposeArticles sends every candidate in one batched request and splits the
// answer into one draft per returned block. Fewer blocks than candidates is a
// warning, not an error; no usable block at all is an error.
func (g *GenerativeComposer) ComposeArticles(ctx context.Context, candidates []types.ScoredCandidate) ([]types.Draft, error) {
	if len(candidates) == 0 {
		return []types.Draft{}, nil
	}

	system, user, err := BatchPrompts(candidates)
	if err != nil {
		return nil, err
	}

	out, err := g.client.GenerateWithSystem(ctx, system, user, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("failed to generate approval pack: %w", err)
	}
	out = rendering.Sanitize(llm.CleanResponse(out))

	if n := CountBlocks(out); n < len(candidates) {
		g.warnf("provider returned %d of %d requested articles; using what was returned", n, len(candidates))
	}

	drafts := g.splitBlocks(out, candidates)
	if len(drafts) == 0 {
		return nil, fmt.Errorf("generated output contained no usable article blocks")
	}
	return drafts, nil
}

// ComposeStory drafts a single-subject post with the kind's instruction template.
func (g *GenerativeComposer) ComposeStory(ctx context.Context, req StoryRequest) (types.Draft, error) {
	if err := req.Validate(); err != nil {
		return types.Draft{}, err
	}

	prefix := promptPrefix(req.Kind)
	data := req.promptData()
	system, err := prompts.Render(prompts.DraftingFile, prefix+"-system", data)
	if err != nil {
		return types.Draft{}, err
	}
	user, err := prompts.Render(prompts.DraftingFile, prefix+"-user", data)
	if err != nil {
		return types.Draft{}, err
	}

	out, err := g.client.GenerateWithSystem(ctx, system, user, llm.TierStandard)
	if err != nil {
		return types.Draft{}, fmt.Errorf("failed to generate %s post: %w", prefix, err)
	}

	post := llm.CleanResponse(out)
	if post == "" {
		return types.Draft{}, fmt.Errorf("provider returned an empty %s post", prefix)
	}
	return storyDraft(&req, post, g.now()), nil
}

// BatchPrompts builds the system and user messages for a batched article request.
func BatchPrompts(candidates []types.ScoredCandidate) (string, string, error) {
	count := strconv.Itoa(len(candidates))

	entries := make([]string, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i].Candidate
		entry, err := prompts.Render(prompts.DraftingFile, "article-entry", map[string]string{
			"Index":     strconv.Itoa(i + 1),
			"Title":     c.Title,
			"URL":       c.URL,
			"WordCount": strconv.Itoa(c.WordCount()),
			"Preview":   preview(c.BodyText),
		})
		if err != nil {
			return "", "", err
		}
		entries = append(entries, entry)
	}

	system, err := prompts.Render(prompts.DraftingFile, "batch-system", map[string]string{"Count": count})
	if err != nil {
		return "", "", err
	}
	user, err := prompts.Render(prompts.DraftingFile, "batch-user", map[string]string{
		"Count":     count,
		"Total":     count,
		"Technical": strconv.Itoa(selection.TechnicalTarget(len(candidates))),
		"Articles":  strings.Join(entries, "\n\n"),
	})
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= previewChars {
		return body
	}
	return string(r[:previewChars]) + "..."
}

// CountBlocks returns the number of numbered article blocks in generated output.
func CountBlocks(text string) int {
	return len(blockMarker.FindAllStringIndex(text, -1))
}

// splitBlocks turns generated output into drafts, skipping blocks without post text.
func (g *GenerativeComposer) splitBlocks(text string, candidates []types.ScoredCandidate) []types.Draft {
	matches := blockMarker.FindAllStringSubmatchIndex(text, -1)
	drafts := make([]types.Draft, 0, len(matches))

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		block := text[m[0]:end]
		number, _ := strconv.Atoi(text[m[2]:m[3]])

		d, ok := g.blockDraft(block, number, candidates)
		if !ok {
			g.warnf("skipping article block %d: no post text", number)
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts
}

func (g *GenerativeComposer) blockDraft(block string, number int, candidates []types.ScoredCandidate) (types.Draft, bool) {
	post, err := parsing.ExtractPostText(block)
	if err != nil {
		return types.Draft{}, false
	}

	title := labelValue(block, "Article Title:")
	if title == "" {
		header := strings.SplitN(block, "\n", 2)[0]
		if idx := strings.Index(header, ":"); idx >= 0 {
			title = strings.TrimSpace(header[idx+1:])
		}
	}
	url := labelValue(block, "Article URL:")

	var score float64
	if sc := matchCandidate(candidates, url, number); sc != nil {
		score = sc.Score
		url = sc.Candidate.URL
		if title == "" {
			title = sc.Candidate.Title
		}
	}

	return types.Draft{
		Kind:  types.KindArticle,
		Title: title,
		Sections: []types.Section{
			{Heading: rendering.HeadingSummary, Content: between(block, rendering.HeadingSummary+":", rendering.HeadingWhy+":")},
			{Heading: rendering.HeadingWhy, Content: between(block, rendering.HeadingWhy+":", rendering.PostMarker)},
		},
		PostText:  post,
		Status:    types.StatusDraft,
		CreatedAt: g.now(),
		SourceURL: url,
		Score:     score,
	}, true
}

// matchCandidate finds the candidate a block refers to, by URL first and then by
// position. A URL that names no candidate falls through to the position.
func matchCandidate(candidates []types.ScoredCandidate, url string, number int) *types.ScoredCandidate {
	if url != "" {
		for i := range candidates {
			if candidates[i].Candidate.URL == url {
				return &candidates[i]
			}
		}
	}
	if number >= 1 && number <= len(candidates) {
		return &candidates[number-1]
	}
	return nil
}

// labelValue returns the rest of the first line starting with label
func labelValue(block, label string) string {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return ""
}

// between returns the trimmed text after start and before end (or the block end)
func between(block, start, end string) string {
	i := strings.Index(block, start)
	if i < 0 {
		return ""
	}
	rest := block[i+len(start):]
	if j := strings.Index(rest, end); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

func (g *GenerativeComposer) warnf(format string, args ...any) {
	if g.warn != nil {
		g.warn(fmt.Sprintf(format, args...))
	}
}
