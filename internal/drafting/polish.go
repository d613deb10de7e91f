package drafting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/post-curator/internal/llm"
	"github.com/jonathan/post-curator/internal/prompts"
	"github.com/jonathan/post-curator/internal/rendering"
	"github.com/jonathan/post-curator/internal/types"
)

// polishTitleChars caps the title taken from the draft's first line
const polishTitleChars = 60

// Polish improves a user-written draft while keeping its voice. note is optional
// context for the provider. With a nil client the original text is returned
// unchanged as the post.
func Polish(ctx context.Context, client llm.Client, draft, note string, now time.Time) (types.Draft, error) {
	original := strings.TrimSpace(draft)
	if original == "" {
		return types.Draft{}, fmt.Errorf("nothing to polish: draft is empty")
	}

	polished := original
	if client != nil {
		data := map[string]string{"Draft": original, "Context": ""}
		if strings.TrimSpace(note) != "" {
			data["Context"] = "Context: " + strings.TrimSpace(note)
		}

		system, err := prompts.Render(prompts.DraftingFile, "polish-system", data)
		if err != nil {
			return types.Draft{}, err
		}
		user, err := prompts.Render(prompts.DraftingFile, "polish-user", data)
		if err != nil {
			return types.Draft{}, err
		}

		out, err := client.GenerateWithSystem(ctx, system, user, llm.TierLite)
		if err != nil {
			return types.Draft{}, fmt.Errorf("failed to polish draft: %w", err)
		}
		if cleaned := llm.CleanResponse(out); cleaned != "" {
			polished = cleaned
		}
	}

	firstLine := strings.SplitN(original, "\n", 2)[0]
	return types.Draft{
		Kind:      types.KindPolish,
		Title:     rendering.TruncateWords(firstLine, polishTitleChars),
		Sections:  []types.Section{{Heading: rendering.HeadingOriginal, Content: original}},
		PostText:  rendering.Sanitize(polished),
		Status:    types.StatusDraft,
		CreatedAt: now,
	}, nil
}
