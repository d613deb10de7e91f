// Package fetch - platform.go recognizes publishing platforms that need their own selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known article publishing platform.
type Platform string

const (
	// PlatformArxiv is the arXiv preprint server
	PlatformArxiv Platform = "arxiv"
	// PlatformMedium covers Medium and publications hosted on it
	PlatformMedium Platform = "medium"
	// PlatformSubstack is the Substack newsletter platform
	PlatformSubstack Platform = "substack"
	// PlatformWordPress covers self-hosted and wordpress.com blogs
	PlatformWordPress Platform = "wordpress"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// mediumHosts are publications served from Medium's infrastructure under their own domain
var mediumHosts = []string{
	"medium.com",
	"towardsdatascience.com",
	"betterprogramming.pub",
}

// DetectPlatform identifies the publishing platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())

	if host == "arxiv.org" || strings.HasSuffix(host, ".arxiv.org") {
		return PlatformArxiv
	}
	for _, h := range mediumHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return PlatformMedium
		}
	}
	if strings.HasSuffix(host, ".substack.com") {
		return PlatformSubstack
	}
	if strings.HasSuffix(host, ".wordpress.com") || strings.Contains(parsed.Path, "/wp-content/") {
		return PlatformWordPress
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformArxiv:
		return []string{
			"blockquote.abstract",
			"#abs",
			"#content",
		}
	case PlatformMedium:
		return []string{
			"article section",
			"article",
			"main",
		}
	case PlatformSubstack:
		return []string{
			".available-content",
			".body.markup",
			"article",
		}
	case PlatformWordPress:
		return []string{
			".entry-content",
			".post-content",
			"article",
			"main",
		}
	default:
		return ArticleSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// Newsletter and paywall prompts
		".newsletter-signup",
		".subscribe",
		".subscription-widget",
		".paywall",

		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Related content
		".related-posts",
		".recommended",
		".comments",
		"#comments",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformArxiv:
		return append(common,
			".extra-services",
			".submission-history",
		)
	case PlatformMedium:
		return append(common,
			"[data-testid='headerClapButton']",
			".pw-multi-vote-icon",
		)
	case PlatformSubstack:
		return append(common,
			".subscription-widget-wrap",
			".post-footer",
		)
	case PlatformWordPress:
		return append(common,
			".sharedaddy",
			".jp-relatedposts",
			".wp-block-buttons",
		)
	default:
		return common
	}
}
