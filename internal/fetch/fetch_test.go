package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	page, err := GetPage(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, page.URL)
	assert.Contains(t, page.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, page.StatusCode)
}

func TestGetPage_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not-a-valid-url", "ftp://example.com/a", "file:///etc/passwd"} {
		_, err := GetPage(context.Background(), raw, nil)
		require.Error(t, err, raw)

		var fetchErr *Error
		assert.ErrorAs(t, err, &fetchErr)
		assert.Contains(t, err.Error(), "invalid URL")
	}
}

func TestGetPage_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	page, err := GetPage(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, page)
	assert.Equal(t, http.StatusNotFound, page.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestGetPage_RejectsNonHTML(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{"html", "text/html", false},
		{"xhtml", "application/xhtml+xml; charset=utf-8", false},
		{"pdf", "application/pdf", true},
		{"json", "application/json", true},
		{"plain text", "text/plain; charset=utf-8", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte("<html><body>x</body></html>"))
			}))
			defer server.Close()

			_, err := GetPage(context.Background(), server.URL, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "not an HTML page")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetPage_RejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>" + strings.Repeat("a", 2048) + "</body></html>"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.MaxBytes = 1024
	_, err := GetPage(context.Background(), server.URL, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "larger than 1024 bytes")

	opts.MaxBytes = 4096
	_, err = GetPage(context.Background(), server.URL, opts)
	require.NoError(t, err)
}

func TestGetPage_SendsHeaders(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.Headers = map[string]string{"X-Test": "yes"}
	_, err := GetPage(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "yes", gotCustom)
}

func TestExtractMainText_ArticleSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<article>
				<header><span class="share">Share on X</span></header>
				<div itemprop="articleBody">
					<p>This is the important text.</p>
					<aside>Read next: something else</aside>
				</div>
				<div class="related-posts">Related: ten more stories</div>
			</article>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, ArticleSelectors())
	require.NoError(t, err)
	assert.Equal(t, "This is the important text.", text)
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	html := `<html><body><div>Some content here.</div><div class="newsletter">Sign up</div></body></html>`

	text, err := ExtractMainText(html, ArticleSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Some content here.", text)
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `
	<html>
		<body>
			<div class="sidebar">Sidebar junk</div>
			<div class="entry-content">
				<h2>Findings</h2>
				<p>The benchmark improved by 12 percent.</p>
				<div class="sharedaddy">Share this</div>
			</div>
		</body>
	</html>`

	text, err := ExtractMainText(html, PlatformContentSelectors(PlatformWordPress), PlatformNoiseSelectors(PlatformWordPress)...)
	require.NoError(t, err)
	assert.Contains(t, text, "Findings")
	assert.Contains(t, text, "improved by 12 percent")
	assert.NotContains(t, text, "Sidebar junk")
	assert.NotContains(t, text, "Share this")
}

func TestArticleSelectors(t *testing.T) {
	selectors := ArticleSelectors()
	assert.Contains(t, selectors, "[itemprop='articleBody']")
	assert.Contains(t, selectors, "article")
}
