package drafting

import (
	"context"

	"github.com/jonathan/post-curator/internal/types"
)

// FallbackComposer tries Primary and, on any error, drafts with Fallback instead.
// It is used for unattended runs where a provider outage must not stop the pipeline.
type FallbackComposer struct {
	Primary    Composer
	Fallback   Composer
	OnFallback func(err error)
}

// Name reports the primary strategy
func (f *FallbackComposer) Name() string {
	return f.Primary.Name() + ", falling back to " + f.Fallback.Name()
}

// ComposeArticles drafts with Primary, falling back on error.
func (f *FallbackComposer) ComposeArticles(ctx context.Context, candidates []types.ScoredCandidate) ([]types.Draft, error) {
	drafts, err := f.Primary.ComposeArticles(ctx, candidates)
	if err == nil {
		return drafts, nil
	}
	f.notify(err)
	return f.Fallback.ComposeArticles(ctx, candidates)
}

// ComposeStory drafts with Primary, falling back on error.
// Invalid requests are not retried since the fallback would reject them too.
func (f *FallbackComposer) ComposeStory(ctx context.Context, req StoryRequest) (types.Draft, error) {
	if err := req.Validate(); err != nil {
		return types.Draft{}, err
	}

	d, err := f.Primary.ComposeStory(ctx, req)
	if err == nil {
		return d, nil
	}
	f.notify(err)
	return f.Fallback.ComposeStory(ctx, req)
}

func (f *FallbackComposer) notify(err error) {
	if f.OnFallback != nil {
		f.OnFallback(err)
	}
}
