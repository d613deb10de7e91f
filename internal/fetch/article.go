package fetch

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/jonathan/post-curator/internal/types"
)

const (
	// MinArticleChars is the shortest body text accepted as a fetched article
	MinArticleChars = 50

	// readabilityMinChars is the shortest readability result trusted over selector extraction
	readabilityMinChars = 100

	// Untitled is the title used when a page has none
	Untitled = "Untitled"
)

// Input is one article to fetch. Title overrides the extracted title when set.
type Input struct {
	URL    string
	Title  string
	Source string
}

// Article is the extracted content of a page.
type Article struct {
	Title       string
	Text        string
	PublishedAt *time.Time
}

// Fetcher turns article URLs into candidates.
type Fetcher struct {
	Options *Options
	// Render is used when HTTP extraction yields too little text; nil disables the browser fallback
	Render  Renderer
	Verbose bool
}

// NewFetcher creates a fetcher with default options. useBrowser enables the headless fallback.
func NewFetcher(useBrowser, verbose bool) *Fetcher {
	f := &Fetcher{Options: DefaultOptions(), Verbose: verbose}
	if useBrowser {
		f.Render = BrowserRenderer(verbose)
	}
	return f
}

// Fetch retrieves one article and returns it as a candidate.
// Pages whose extracted text is shorter than MinArticleChars are reported as errors.
func (f *Fetcher) Fetch(ctx context.Context, in Input) (*types.Candidate, error) {
	page, err := GetPage(ctx, in.URL, f.Options)
	if err != nil {
		return nil, err
	}
	pageURL, _ := url.Parse(in.URL)

	article := ExtractArticle(page.HTML, pageURL)
	if f.Verbose {
		log.Printf("[VERBOSE] %s: extracted %d chars", in.URL, len(article.Text))
	}

	if f.Render != nil && ShouldUseBrowser(article.Text) {
		if f.Verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), rendering in browser...", len(article.Text), MinContentLength)
		}
		if html, renderErr := f.Render(ctx, in.URL); renderErr != nil {
			if f.Verbose {
				log.Printf("[VERBOSE] Browser rendering failed: %v, using HTTP content", renderErr)
			}
		} else if rendered := ExtractArticle(html, pageURL); len(rendered.Text) > len(article.Text) {
			article = rendered
		}
	}

	if len(strings.TrimSpace(article.Text)) < MinArticleChars {
		return nil, &Error{URL: in.URL, Message: "could not extract meaningful content"}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = article.Title
	}
	if title == "" {
		title = Untitled
	}

	source := in.Source
	if source == "" && pageURL != nil {
		source = strings.TrimPrefix(pageURL.Hostname(), "www.")
	}

	return &types.Candidate{
		Title:       title,
		URL:         in.URL,
		BodyText:    article.Text,
		Source:      source,
		PublishedAt: article.PublishedAt,
	}, nil
}

// FetchAll fetches inputs one at a time, skipping failures with a warning.
func (f *Fetcher) FetchAll(ctx context.Context, inputs []Input, warn func(string)) []types.Candidate {
	candidates := make([]types.Candidate, 0, len(inputs))
	for _, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		c, err := f.Fetch(ctx, in)
		if err != nil {
			if warn != nil {
				warn(fmt.Sprintf("skipped %s: %v", in.URL, err))
			}
			continue
		}
		candidates = append(candidates, *c)
	}
	return candidates
}

// ExtractArticle pulls the title, body text and publish time out of an article page.
// Readability is preferred; platform selectors are the fallback when it finds too little.
func ExtractArticle(html string, pageURL *url.URL) Article {
	if pageURL == nil {
		pageURL = &url.URL{}
	}

	var out Article
	if parsed, err := readability.FromReader(strings.NewReader(html), pageURL); err == nil {
		out.Title = strings.TrimSpace(parsed.Title)
		out.PublishedAt = parsed.PublishedTime
		if out.PublishedAt == nil {
			out.PublishedAt = parsed.ModifiedTime
		}
		text := cleanWhitespace(parsed.TextContent)
		if len(text) > readabilityMinChars {
			out.Text = text
			return out
		}
	}

	platform := DetectPlatform(pageURL.String())
	text, err := ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err == nil {
		out.Text = text
	}
	if out.Title == "" {
		out.Title = pageTitle(html)
	}
	return out
}

// pageTitle reads og:title, then <title>, then the first <h1>.
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	if err != nil {
		return ""
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
