package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/post-curator/internal/config"
)

// EntryResult is the outcome of one content plan entry
type EntryResult struct {
	Index  int     `json:"index"`
	Label  string  `json:"label"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// PlanReport summarizes a content plan run
type PlanReport struct {
	Entries   []EntryResult `json:"entries"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// RunPlan processes plan entries in order. A failing entry is reported and
// the remaining entries still run; an error is returned only when every entry failed.
func (r *Runner) RunPlan(ctx context.Context, plan *config.ContentPlan) (*PlanReport, error) {
	if plan == nil || len(plan.Posts) == 0 {
		return nil, fmt.Errorf("content plan has no posts")
	}

	report := &PlanReport{}
	total := len(plan.Posts)
	for i, entry := range plan.Posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		label := entry.Describe()
		r.printf("\nPost %d/%d: %s\n", i+1, total, label)

		res, err := r.runEntry(ctx, entry)
		er := EntryResult{Index: i + 1, Label: label, Result: res, Err: err}
		report.Entries = append(report.Entries, er)
		if err != nil {
			report.Failed++
			r.warn(fmt.Sprintf("post %d (%s) failed: %v", i+1, label, err))
			continue
		}
		report.Succeeded++
		r.printf("  %s\n", res.Summary())
	}

	r.emitProgress("plan", "posts", fmt.Sprintf("%d of %d posts drafted", report.Succeeded, total), report)
	if report.Succeeded == 0 {
		return report, fmt.Errorf("all %d plan entries failed", total)
	}
	return report, nil
}

func (r *Runner) runEntry(ctx context.Context, entry config.PlanEntry) (*Result, error) {
	if entry.IsArticle() {
		return r.RunArticles(ctx, ArticleOptions{
			Source: entry.Source,
			URLs:   entry.URLs,
			Count:  entry.Count,
		})
	}
	req, err := entry.StoryRequest()
	if err != nil {
		return nil, err
	}
	return r.RunStory(ctx, req)
}
