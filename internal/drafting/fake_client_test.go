package drafting

import (
	"context"

	"github.com/jonathan/post-curator/internal/llm"
)

// fakeClient is an llm.Client that records calls and returns canned output
type fakeClient struct {
	response string
	err      error

	calls   int
	systems []string
	prompts []string
	tiers   []llm.ModelTier
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateWithSystem(ctx, "", prompt, tier)
}

func (f *fakeClient) GenerateWithSystem(_ context.Context, system, prompt string, tier llm.ModelTier) (string, error) {
	f.calls++
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	f.tiers = append(f.tiers, tier)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) GetModel(_ llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }
