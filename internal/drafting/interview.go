package drafting

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/post-curator/internal/types"
)

// question is one interview prompt and the request field its answer fills.
// Questions with skipIfSet are only asked when the field is still empty.
type question struct {
	prompt    func(r *StoryRequest) string
	set       func(r *StoryRequest, answer string)
	skipIfSet func(r *StoryRequest) string
}

func appendAnswer(field *string, label, answer string) {
	if answer == "" {
		return
	}
	if label != "" {
		answer = label + ": " + answer
	}
	if *field == "" {
		*field = answer
		return
	}
	*field += "\n" + answer
}

var interviews = map[types.DraftKind][]question{
	types.KindPersonal: {
		{
			prompt:    func(*StoryRequest) string { return "What is the story about? (a short topic)" },
			set:       func(r *StoryRequest, a string) { r.Topic = a },
			skipIfSet: func(r *StoryRequest) string { return r.Topic },
		},
		{
			prompt: func(*StoryRequest) string {
				return "What kind of story is it? (professional_learning, challenge_overcome, insight_gained, career_moment)"
			},
			set:       func(r *StoryRequest, a string) { r.StoryType = strings.ToLower(a) },
			skipIfSet: func(r *StoryRequest) string { return r.StoryType },
		},
		{
			prompt:    func(*StoryRequest) string { return "How long should it be? (short, medium, long)" },
			set:       func(r *StoryRequest, a string) { r.Length = strings.ToLower(a) },
			skipIfSet: func(r *StoryRequest) string { return r.Length },
		},
	},
	types.KindColleague: {
		{
			prompt:    func(*StoryRequest) string { return "Which colleague is this about?" },
			set:       func(r *StoryRequest, a string) { r.Name = a },
			skipIfSet: func(r *StoryRequest) string { return r.Name },
		},
		{
			prompt:    func(*StoryRequest) string { return "What topic did they help you with?" },
			set:       func(r *StoryRequest, a string) { r.Topic = a },
			skipIfSet: func(r *StoryRequest) string { return r.Topic },
		},
		{
			prompt: func(r *StoryRequest) string {
				return fmt.Sprintf("What specific technique or insight did %s share? (1-2 sentences)", r.Name)
			},
			set: func(r *StoryRequest, a string) { appendAnswer(&r.Learned, "", a) },
		},
		{
			prompt: func(*StoryRequest) string { return "How does this compare to what you were doing before?" },
			set:    func(r *StoryRequest, a string) { appendAnswer(&r.Experience, "Before", a) },
		},
		{
			prompt: func(*StoryRequest) string { return "Why does this matter to you or your work?" },
			set:    func(r *StoryRequest, a string) { appendAnswer(&r.Experience, "Why it matters", a) },
		},
	},
	types.KindTech: {
		{
			prompt:    func(*StoryRequest) string { return "Which technology is this about?" },
			set:       func(r *StoryRequest, a string) { r.Technology = a },
			skipIfSet: func(r *StoryRequest) string { return r.Technology },
		},
		{
			prompt: func(r *StoryRequest) string {
				return fmt.Sprintf("How long have you been using %s? (e.g. 'for 6 months in production')", r.Technology)
			},
			set:       func(r *StoryRequest, a string) { r.Experience = a },
			skipIfSet: func(r *StoryRequest) string { return r.Experience },
		},
		{
			prompt: func(r *StoryRequest) string {
				return fmt.Sprintf("What is ONE thing about %s that surprised you or that most people get wrong?", r.Technology)
			},
			set:       func(r *StoryRequest, a string) { r.Perspective = a },
			skipIfSet: func(r *StoryRequest) string { return r.Perspective },
		},
		{
			prompt: func(*StoryRequest) string { return "What is your top advice for someone just starting with it?" },
			set:    func(r *StoryRequest, a string) { appendAnswer(&r.Insights, "", a) },
		},
	},
	types.KindCommunity: {
		{
			prompt:    func(*StoryRequest) string { return "Which event or meetup was it?" },
			set:       func(r *StoryRequest, a string) { r.Event = a },
			skipIfSet: func(r *StoryRequest) string { return r.Event },
		},
		{
			prompt:    func(*StoryRequest) string { return "What topic was discussed?" },
			set:       func(r *StoryRequest, a string) { r.Topic = a },
			skipIfSet: func(r *StoryRequest) string { return r.Topic },
		},
		{
			prompt: func(*StoryRequest) string { return "What specific tip or insight did you hear that stuck with you?" },
			set:    func(r *StoryRequest, a string) { appendAnswer(&r.Heard, "", a) },
		},
		{
			prompt: func(*StoryRequest) string { return "Did you try this yourself, or how do you plan to use it?" },
			set:    func(r *StoryRequest, a string) { appendAnswer(&r.Context, "", a) },
		},
		{
			prompt: func(*StoryRequest) string { return "Why was this the most interesting thing you learned?" },
			set:    func(r *StoryRequest, a string) { appendAnswer(&r.Context, "Why it stuck", a) },
		},
	},
}

// Interview asks the questions for the request's kind on out and fills the
// request from the answers read from in, one line each. Fields already set
// by flags are not asked for again. Blank answers leave a field unchanged.
// The filled request is validated before it is returned.
func Interview(in io.Reader, out io.Writer, req *StoryRequest) error {
	questions, ok := interviews[req.Kind]
	if !ok {
		return fmt.Errorf("no interview for %q posts", req.Kind)
	}

	var asked []question
	for _, q := range questions {
		if q.skipIfSet != nil && strings.TrimSpace(q.skipIfSet(req)) != "" {
			continue
		}
		asked = append(asked, q)
	}

	fmt.Fprintf(out, "\nINTERVIEW MODE: %s post\n", req.Kind)
	fmt.Fprintln(out, "Answer a few questions; press Enter to skip one.")

	scanner := bufio.NewScanner(in)
	for i, q := range asked {
		fmt.Fprintf(out, "\nQuestion %d of %d:\n%s\n> ", i+1, len(asked), q.prompt(req))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read answer: %w", err)
			}
			return fmt.Errorf("interview ended after %d of %d answers", i, len(asked))
		}
		q.set(req, strings.TrimSpace(scanner.Text()))
	}
	fmt.Fprintln(out)

	return req.Validate()
}
