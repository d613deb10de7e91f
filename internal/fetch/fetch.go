// Package fetch retrieves article pages and turns them into candidate text.
// Readability extraction is tried first, then selector-based goquery extraction,
// then an optional headless-browser render for pages built client-side.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds one page request
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes caps how much of a page body is read
	DefaultMaxBytes = 5 << 20

	// DefaultUserAgent identifies the curator to publishers
	DefaultUserAgent = "Mozilla/5.0 (compatible; PostCurator/1.0; +https://github.com/jonathan/post-curator)"
)

// htmlTypes are the media types article extraction understands
var htmlTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
}

// articleNoise is page furniture around an article body: navigation, share
// widgets, newsletter prompts, comment threads and related-story rails.
var articleNoise = []string{
	"nav", "header", "footer", "aside", "iframe",
	"script", "style", "noscript", "figcaption",
	".ad", ".ads", ".advertisement", ".sponsored",
	".share", ".social-share", ".newsletter", ".subscribe", ".paywall",
	".related", ".related-posts", ".recommended", ".more-stories",
	".comments", "#comments", ".author-bio", ".cookie-banner", ".popup", ".sidebar",
}

// Page is a fetched HTML document.
type Page struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error is a failed page fetch.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures page requests.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// MaxBytes caps the body size; larger pages are rejected
	MaxBytes int64
	Headers  map[string]string
}

// DefaultOptions returns the options used by NewFetcher.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

// GetPage downloads an article page. Only http(s) URLs are accepted, the
// response must be 200 with an HTML content type, and bodies over
// MaxBytes are rejected. The page is returned alongside a status error so
// callers can inspect it.
func GetPage(ctx context.Context, rawURL string, opts *Options) (*Page, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	page := &Page{
		URL:         rawURL,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	if !isHTML(page.ContentType) {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("not an HTML page (%s)", page.ContentType)}
	}
	if resp.ContentLength > maxBytes {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("page larger than %d bytes", maxBytes)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return page, &Error{URL: rawURL, Message: "failed to read body", Cause: err}
	}
	if int64(len(body)) > maxBytes {
		return page, &Error{URL: rawURL, Message: fmt.Sprintf("page larger than %d bytes", maxBytes)}
	}
	page.HTML = string(body)
	return page, nil
}

// isHTML reports whether a Content-Type header names an HTML document.
// A missing header is accepted; servers omit it often enough.
func isHTML(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return htmlTypes[mediaType]
}

// ExtractMainText returns the text of the first element matching one of
// contentSelectors, or of <body> when none match. Article noise and any
// extra noiseSelectors are removed first. Lines are trimmed and blank lines dropped.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	noise := append(append([]string{}, articleNoise...), noiseSelectors...)
	doc.Find(strings.Join(noise, ", ")).Remove()

	content := doc.Find("body")
	for _, selector := range contentSelectors {
		if match := doc.Find(selector); match.Length() > 0 {
			content = match.First()
			break
		}
	}

	return cleanWhitespace(content.Text()), nil
}

// ArticleSelectors returns selectors for news and blog article bodies, most specific first.
func ArticleSelectors() []string {
	return []string{
		"article [itemprop='articleBody']",
		"[itemprop='articleBody']",
		".article-body",
		".article-content",
		".post-content",
		".entry-content",
		"article",
		"main",
		".content",
		"#content",
	}
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
