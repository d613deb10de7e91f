package main

import (
	"fmt"

	"github.com/jonathan/post-curator/internal/config"
	"github.com/jonathan/post-curator/internal/drafting"
	"github.com/spf13/cobra"
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Draft a post from a personal prompt",
	Long: "Drafts a single post from a personal story, a colleague insight, a technical perspective " +
		"or a community insight, and stages it for review. With --interview the details are collected " +
		"by asking a few questions on the terminal; flags given alongside are not asked for again.",
	RunE: runStory,
}

var (
	storyEntry     config.PlanEntry
	storyOpts      draftFlags
	storyInterview bool
)

func init() {
	f := storyCmd.Flags()
	f.StringVar(&storyEntry.Type, "type", "", "Post type: personal, colleague, tech or community (required)")
	f.StringVar(&storyEntry.Topic, "topic", "", "Topic (personal, colleague, community)")
	f.StringVar(&storyEntry.StoryType, "story-type", "", "Personal story type: professional_learning, challenge_overcome, insight_gained or career_moment")
	f.StringVar(&storyEntry.Length, "length", "", "Personal story length: short, medium or long")
	f.StringVar(&storyEntry.Name, "name", "", "Colleague name")
	f.StringVar(&storyEntry.Learned, "learned", "", "What you learned from the colleague")
	f.StringVar(&storyEntry.Technology, "technology", "", "Technology (tech)")
	f.StringVar(&storyEntry.Experience, "experience", "", "Your experience with it (tech, colleague)")
	f.StringVar(&storyEntry.Perspective, "perspective", "", "Perspective focus (tech)")
	f.StringVar(&storyEntry.Insights, "insights", "", "Optional specific insights (tech)")
	f.StringVar(&storyEntry.Event, "event", "", "Event name (community)")
	f.StringVar(&storyEntry.Heard, "heard", "", "What you heard (community)")
	f.StringVar(&storyEntry.Context, "context", "", "Optional extra context (community)")
	f.BoolVar(&storyInterview, "interview", false, "Answer a few questions instead of passing every detail as flags")
	storyOpts.register(storyCmd)

	if err := storyCmd.MarkFlagRequired("type"); err != nil {
		panic(fmt.Sprintf("failed to mark type flag as required: %v", err))
	}

	rootCmd.AddCommand(storyCmd)
}

func runStory(cmd *cobra.Command, _ []string) error {
	if storyEntry.IsArticle() {
		return fmt.Errorf("use the draft command for article posts")
	}
	req, err := storyRequest(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	sess, err := newSession(ctx, &storyOpts)
	if err != nil {
		return err
	}
	defer sess.close()

	res, err := sess.runner.RunStory(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s\n", res.Summary())
	return nil
}

func storyRequest(cmd *cobra.Command) (drafting.StoryRequest, error) {
	if !storyInterview {
		return storyEntry.StoryRequest()
	}
	req, err := storyEntry.StoryFields()
	if err != nil {
		return drafting.StoryRequest{}, err
	}
	if err := drafting.Interview(cmd.InOrStdin(), cmd.OutOrStdout(), &req); err != nil {
		return drafting.StoryRequest{}, err
	}
	return req, nil
}
