package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/post-curator/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func rssItem(title, link, desc string, published time.Time) string {
	pub := ""
	if !published.IsZero() {
		pub = "<pubDate>" + published.Format(time.RFC1123Z) + "</pubDate>"
	}
	return fmt.Sprintf("<item><title>%s</title><link>%s</link><description><![CDATA[%s]]></description>%s</item>", title, link, desc, pub)
}

func rssFeed(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Test</title>` +
		strings.Join(items, "") + `</channel></rss>`
}

func feedServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFromSource_FiltersAndCaps(t *testing.T) {
	feed := rssFeed(
		rssItem("Fresh one", "https://example.com/1", "<p>Summary <b>one</b></p>", now.Add(-time.Hour)),
		rssItem("Too old", "https://example.com/old", "old", now.AddDate(0, 0, -30)),
		rssItem("", "https://example.com/notitle", "x", now.Add(-time.Hour)),
		rssItem("Undated", "https://example.com/undated", strings.Repeat("long ", 200), time.Time{}),
		rssItem("Fresh two", "https://example.com/2", "two", now.Add(-2*time.Hour)),
		rssItem("Fresh three", "https://example.com/3", "three", now.Add(-3*time.Hour)),
	)
	server := feedServer(t, feed, http.StatusOK)

	d := New(Options{MaxPerSource: 2, Now: func() time.Time { return now }})
	items, err := d.FromSource(context.Background(), Source{Name: "Test Feed", URL: server.URL})
	require.NoError(t, err)

	// only the first 4 entries are inspected; the old and untitled ones are dropped
	require.Len(t, items, 2)
	assert.Equal(t, "Fresh one", items[0].Title)
	assert.Equal(t, "Summary one", items[0].Summary)
	assert.Equal(t, "Test Feed", items[0].Source)
	require.NotNil(t, items[0].Published)

	assert.Equal(t, "Undated", items[1].Title)
	assert.Nil(t, items[1].Published)
	assert.LessOrEqual(t, len([]rune(items[1].Summary)), SummaryMaxChars)
	assert.Greater(t, len(items[1].Summary), SummaryMaxChars-5)
}

func TestFromSource_BadFeed(t *testing.T) {
	server := feedServer(t, "not a feed", http.StatusInternalServerError)

	_, err := New(Options{}).FromSource(context.Background(), Source{Name: "Broken", URL: server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken")
}

func TestDiscover_MergesAndSorts(t *testing.T) {
	a := feedServer(t, rssFeed(
		rssItem("A old", "https://a.example/1", "", now.Add(-48*time.Hour)),
		rssItem("A undated", "https://a.example/2", "", time.Time{}),
	), http.StatusOK)
	b := feedServer(t, rssFeed(
		rssItem("B new", "https://b.example/1", "", now.Add(-time.Hour)),
	), http.StatusOK)
	broken := feedServer(t, "", http.StatusNotFound)

	var warnings []string
	d := New(Options{
		Sources: []Source{{Name: "A", URL: a.URL}, {Name: "Broken", URL: broken.URL}, {Name: "B", URL: b.URL}},
		Limit:   2,
		Now:     func() time.Time { return now },
		Warn:    func(m string) { warnings = append(warnings, m) },
	})

	items := d.Discover(context.Background())
	require.Len(t, items, 2)
	assert.Equal(t, "B new", items[0].Title)
	assert.Equal(t, "A old", items[1].Title)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Broken")
}

func TestSortNewestFirst(t *testing.T) {
	t1 := now.Add(-time.Hour)
	t2 := now.Add(-2 * time.Hour)
	items := []Discovered{
		{Title: "undated-1"},
		{Title: "older", Published: &t2},
		{Title: "undated-2"},
		{Title: "newer", Published: &t1},
	}

	SortNewestFirst(items)
	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"newer", "older", "undated-1", "undated-2"}, titles)
}

func TestNew_Defaults(t *testing.T) {
	d := New(Options{})
	assert.Equal(t, DefaultMaxPerSource, d.opts.MaxPerSource)
	assert.Equal(t, DefaultDaysBack, d.opts.DaysBack)
	assert.Equal(t, DefaultLimit, d.opts.Limit)
	assert.Len(t, d.opts.Sources, 17)
}

const page = `<html><head><title>Page Title</title></head><body><article>
<p>This article body is comfortably longer than the minimum length needed to count as content for the pipeline.</p>
<p>It has a second paragraph so readability has something to work with when scoring the candidate nodes.</p>
</article></body></html>`

func TestFetchDiscovered(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte("<html><body></body></html>"))
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	defer pages.Close()

	published := now.Add(-time.Hour)
	items := []Discovered{
		{Title: "Feed Title", URL: pages.URL + "/good", Source: "Feed", Published: &published},
		{Title: "Empty", URL: pages.URL + "/empty", Source: "Feed"},
	}

	var warnings []string
	candidates := FetchDiscovered(context.Background(), &fetch.Fetcher{Options: fetch.DefaultOptions()}, items, func(m string) {
		warnings = append(warnings, m)
	})

	require.Len(t, candidates, 1)
	assert.Equal(t, pages.URL+"/good", candidates[0].URL)
	assert.Equal(t, "Feed", candidates[0].Source)
	require.NotNil(t, candidates[0].PublishedAt)
	assert.True(t, published.Equal(*candidates[0].PublishedAt))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Empty")
}
