// Package drafting composes post drafts from selected articles or from
// single-subject prompts, using either deterministic templates or a
// generative provider.
package drafting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/post-curator/internal/llm"
	"github.com/jonathan/post-curator/internal/types"
)

// ErrNoProvider is returned when generative drafting is required but no provider credential is configured.
var ErrNoProvider = errors.New("no generative provider configured")

// Composer turns selected candidates or a story prompt into drafts ready for staging.
// Every returned draft has sanitized, non-empty post text and status Draft.
type Composer interface {
	ComposeArticles(ctx context.Context, candidates []types.ScoredCandidate) ([]types.Draft, error)
	ComposeStory(ctx context.Context, req StoryRequest) (types.Draft, error)
	Name() string
}

// Strategy is the requested drafting strategy
type Strategy string

// Strategy values. StrategyAuto prefers a generative provider and falls back to templates.
const (
	StrategyAuto       Strategy = "auto"
	StrategyTemplate   Strategy = "template"
	StrategyGenerative Strategy = "generative"
)

// Credentials are the provider API keys available to the process
type Credentials struct {
	AnthropicKey string
	OpenAIKey    string
	GeminiKey    string
}

// Resolution is the drafting strategy chosen once at startup.
type Resolution struct {
	Strategy Strategy
	Provider llm.Provider
	APIKey   string
	// Unattended runs fall back to templates when the provider fails
	Unattended bool
}

// Generative reports whether the resolution drafts through a provider.
func (r Resolution) Generative() bool {
	return r.Provider != ""
}

// providerOrder is the precedence used when no provider is named
var providerOrder = []llm.Provider{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini}

func (c Credentials) key(p llm.Provider) string {
	switch p {
	case llm.ProviderAnthropic:
		return c.AnthropicKey
	case llm.ProviderOpenAI:
		return c.OpenAIKey
	case llm.ProviderGemini:
		return c.GeminiKey
	}
	return ""
}

// Resolve picks the drafting strategy from the requested strategy, an optional
// provider name and the available credentials.
//
// Rules:
//   - template strategy, or provider "template", always resolves to templates
//   - a named provider must have a credential
//   - otherwise the first provider with a credential wins (Anthropic, OpenAI, Gemini)
//   - no credential: auto resolves to templates, generative fails with ErrNoProvider
func Resolve(requested Strategy, provider string, creds Credentials) (Resolution, error) {
	if requested == "" {
		requested = StrategyAuto
	}
	switch requested {
	case StrategyAuto, StrategyTemplate, StrategyGenerative:
	default:
		return Resolution{}, fmt.Errorf("unknown drafting strategy %q", requested)
	}

	unattended := requested == StrategyAuto
	if requested == StrategyTemplate || provider == string(StrategyTemplate) {
		return Resolution{Strategy: StrategyTemplate}, nil
	}

	if provider != "" {
		p := llm.Provider(provider)
		key := creds.key(p)
		if key == "" {
			return Resolution{}, fmt.Errorf("provider %q: %w", provider, ErrNoProvider)
		}
		return Resolution{Strategy: StrategyGenerative, Provider: p, APIKey: key, Unattended: unattended}, nil
	}

	for _, p := range providerOrder {
		if key := creds.key(p); key != "" {
			return Resolution{Strategy: StrategyGenerative, Provider: p, APIKey: key, Unattended: unattended}, nil
		}
	}

	if requested == StrategyGenerative {
		return Resolution{}, ErrNoProvider
	}
	return Resolution{Strategy: StrategyTemplate}, nil
}

// Options tune composer construction
type Options struct {
	// Warn receives non-fatal messages such as a block-count shortfall
	Warn func(msg string)
	// Now overrides the clock used for CreatedAt
	Now func() time.Time
}

// New builds the composer for a resolution. The returned client is nil for
// template resolutions; callers close it when done.
func New(ctx context.Context, res Resolution, opts Options) (Composer, llm.Client, error) {
	tmpl := NewTemplateComposer(opts.Now)
	if !res.Generative() {
		return tmpl, nil, nil
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(res.Provider), res.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", res.Provider, err)
	}

	gen := NewGenerativeComposer(client, opts)
	if !res.Unattended {
		return gen, client, nil
	}
	return &FallbackComposer{Primary: gen, Fallback: tmpl, OnFallback: fallbackNotice(opts.Warn)}, client, nil
}

func fallbackNotice(warn func(string)) func(error) {
	return func(err error) {
		if warn != nil {
			warn(fmt.Sprintf("generative drafting failed, using templates: %v", err))
		}
	}
}

func nowFunc(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
