package rendering

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/post-curator/internal/types"
)

// Section headings of the approval-pack layout. The post marker is the hand-off
// contract with the extraction side and must not change.
const (
	HeadingSummary  = "ARTICLE SUMMARY"
	HeadingWhy      = "WHY THIS MATTERS"
	HeadingContext  = "STORY CONTEXT"
	HeadingOriginal = "ORIGINAL DRAFT"
	PostMarker      = "LINKEDIN POST:"
	ApprovalHeading = "APPROVAL INSTRUCTIONS:"
	dateLayout      = "2006-01-02"
	ruleWidth       = 70
)

// Rule is the separator line placed between pack blocks.
var Rule = strings.Repeat("=", ruleWidth)

// packLabels is the header label per non-article kind
var packLabels = map[types.DraftKind]string{
	types.KindPersonal:  "PERSONAL STORY",
	types.KindColleague: "COLLEAGUE INSIGHT",
	types.KindTech:      "TECHNICAL PERSPECTIVE",
	types.KindCommunity: "COMMUNITY INSIGHT",
	types.KindPolish:    "CONTENT POLISHER",
}

// approvalSteps is the reviewer checklist per non-article kind
var approvalSteps = map[types.DraftKind][]string{
	types.KindPersonal: {
		"Review the story above",
		"Edit to add personal details if desired",
		"Make it more specific to your experience",
		"Add specific examples from your work/life",
		"Post to LinkedIn when ready",
	},
	types.KindColleague: {
		"Review the post above",
		"Edit to add more specific details if desired",
		"Make sure the tone feels authentic to your relationship",
		"Post to LinkedIn when ready",
	},
	types.KindTech: {
		"Review the post above",
		"Add more specific technical details from your experience",
		"Include concrete examples or numbers if you have them",
		"Make sure it sounds authentic to your experience level",
		"Post to LinkedIn when ready",
	},
	types.KindCommunity: {
		"Review the post above",
		"Edit to add more context about the event",
		"Make sure it sounds authentic to your experience",
		"Post to LinkedIn when ready",
	},
	types.KindPolish: {
		"Compare original and polished versions",
		"Ensure your voice is maintained",
		"Make any final edits",
		"Post to LinkedIn when ready",
	},
}

// FormatArticleBlock renders one article draft as a numbered pack block.
func FormatArticleBlock(index int, d *types.Draft) string {
	summary, _ := d.Section(HeadingSummary)
	why, _ := d.Section(HeadingWhy)

	lines := []string{
		fmt.Sprintf("ARTICLE %d: %s", index, d.Title),
		fmt.Sprintf("Article Title: %s", d.Title),
		fmt.Sprintf("Article URL: %s", d.SourceURL),
		"",
		HeadingSummary + ":",
		summary,
		"",
		HeadingWhy + ":",
		why,
		"",
		PostMarker,
		"",
		d.PostText,
	}
	return strings.Join(lines, "\n")
}

// FormatArticlePack renders a batch of article drafts as one approval pack.
func FormatArticlePack(drafts []types.Draft) string {
	blocks := make([]string, 0, len(drafts))
	for i := range drafts {
		blocks = append(blocks, FormatArticleBlock(i+1, &drafts[i]))
	}
	return strings.Join(blocks, "\n\n"+Rule+"\n\n")
}

// FormatPromptPack renders a non-article draft (personal story, colleague insight,
// technical perspective, community insight, polish) with its review checklist.
// Sections other than ORIGINAL DRAFT and STORY CONTEXT render as "Heading: Content" header lines.
func FormatPromptPack(d *types.Draft, generated time.Time) (string, error) {
	label, ok := packLabels[d.Kind]
	if !ok {
		return "", &RenderError{Message: fmt.Sprintf("no pack layout for kind %q", d.Kind)}
	}
	if err := d.ReadyForApproval(); err != nil {
		return "", &RenderError{Message: "cannot render draft", Cause: err}
	}

	var sb strings.Builder
	if d.Kind == types.KindPolish {
		sb.WriteString(label + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("%s: %s\n", label, d.Title))
	}

	var context, original string
	for _, s := range d.Sections {
		switch s.Heading {
		case HeadingContext:
			context = s.Content
		case HeadingOriginal:
			original = s.Content
		default:
			sb.WriteString(fmt.Sprintf("%s: %s\n", s.Heading, s.Content))
		}
	}
	sb.WriteString(fmt.Sprintf("Generated: %s\n", generated.Format(dateLayout)))

	if context != "" {
		sb.WriteString("\n" + HeadingContext + ":\n" + context + "\n")
	}
	if original != "" {
		sb.WriteString("\n" + Rule + "\n\n" + HeadingOriginal + ":\n" + original + "\n\n" + Rule + "\n")
	}

	sb.WriteString("\n" + PostMarker + "\n\n")
	sb.WriteString(d.PostText)
	sb.WriteString("\n\n" + Rule + "\n\n" + ApprovalHeading + "\n")
	for i, step := range approvalSteps[d.Kind] {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	return sb.String(), nil
}

// Render returns the staged text of a single draft.
// Article drafts render as a one-block pack so each staged record carries exactly one post.
func Render(d *types.Draft, generated time.Time) (string, error) {
	if d.Kind == types.KindArticle || d.Kind == "" {
		if err := d.ReadyForApproval(); err != nil {
			return "", &RenderError{Message: "cannot render draft", Cause: err}
		}
		return FormatArticleBlock(1, d), nil
	}
	return FormatPromptPack(d, generated)
}
