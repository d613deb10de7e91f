package drafting

import (
	"crypto/md5"
	"fmt"
	"math/big"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/post-curator/internal/rendering"
	"github.com/jonathan/post-curator/internal/types"
)

// Story types for personal stories
const (
	StoryProfessionalLearning = "professional_learning"
	StoryChallengeOvercome    = "challenge_overcome"
	StoryInsightGained        = "insight_gained"
	StoryCareerMoment         = "career_moment"
)

// StoryRequest is the input for a single-subject, non-article post.
// Which fields are required depends on Kind.
type StoryRequest struct {
	Kind types.DraftKind `json:"kind" yaml:"type" validate:"required,oneof=Personal Colleague Tech Community"`

	// Personal and shared fields
	Topic     string `json:"topic,omitempty" yaml:"topic"`
	StoryType string `json:"story_type,omitempty" yaml:"story_type" validate:"omitempty,oneof=professional_learning challenge_overcome insight_gained career_moment"`
	Length    string `json:"length,omitempty" yaml:"length" validate:"omitempty,oneof=short medium long"`

	// Colleague insight
	Name    string `json:"name,omitempty" yaml:"name"`
	Learned string `json:"learned,omitempty" yaml:"learned"`

	// Tech perspective; Experience is also the optional colleague context
	Technology  string `json:"technology,omitempty" yaml:"technology"`
	Experience  string `json:"experience,omitempty" yaml:"experience"`
	Perspective string `json:"perspective,omitempty" yaml:"perspective"`
	Insights    string `json:"insights,omitempty" yaml:"insights"`

	// Community insight
	Event   string `json:"event,omitempty" yaml:"event"`
	Heard   string `json:"heard,omitempty" yaml:"heard"`
	Context string `json:"context,omitempty" yaml:"context"`
}

var validate = validator.New()

// requiredFields lists the caller-supplied fields each kind cannot do without
var requiredFields = map[types.DraftKind][]string{
	types.KindPersonal:  {"topic"},
	types.KindColleague: {"name", "topic", "learned"},
	types.KindTech:      {"technology", "experience", "perspective"},
	types.KindCommunity: {"event", "topic", "heard"},
}

// lengthGuidance maps a requested length onto a line-count range
var lengthGuidance = map[string]string{
	"short":  "3-5 lines (quick insight)",
	"medium": "6-10 lines (balanced storytelling)",
	"long":   "10-15 lines (deeper reflection)",
}

// Validate checks the request has the fields its kind needs.
func (r *StoryRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid story request: %w", err)
	}

	var missing []string
	for _, field := range requiredFields[r.Kind] {
		if strings.TrimSpace(r.field(field)) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s story is missing required fields: %s", strings.ToLower(string(r.Kind)), strings.Join(missing, ", "))
	}
	return nil
}

func (r *StoryRequest) field(name string) string {
	switch name {
	case "topic":
		return r.Topic
	case "name":
		return r.Name
	case "learned":
		return r.Learned
	case "technology":
		return r.Technology
	case "experience":
		return r.Experience
	case "perspective":
		return r.Perspective
	case "event":
		return r.Event
	case "heard":
		return r.Heard
	}
	return ""
}

func (r *StoryRequest) storyType() string {
	if r.StoryType == "" {
		return StoryProfessionalLearning
	}
	return r.StoryType
}

func (r *StoryRequest) lines() string {
	if g, ok := lengthGuidance[r.Length]; ok {
		return g
	}
	return lengthGuidance["medium"]
}

// title is the subject shown in the pack header
func (r *StoryRequest) title() string {
	if r.Kind == types.KindTech {
		return r.Technology
	}
	return r.Topic
}

// sections are the header lines shown above the post in the pack
func (r *StoryRequest) sections() []types.Section {
	switch r.Kind {
	case types.KindPersonal:
		return []types.Section{
			{Heading: "Story Type", Content: r.storyType()},
			{Heading: rendering.HeadingContext, Content: "This is a pure personal experience story about: " + r.Topic},
		}
	case types.KindColleague:
		return []types.Section{{Heading: "Colleague", Content: r.Name}}
	case types.KindTech:
		return []types.Section{{Heading: "Perspective", Content: r.Perspective}}
	case types.KindCommunity:
		return []types.Section{{Heading: "Event", Content: r.Event}}
	}
	return nil
}

// personalOpeners are keyed by story type; {topic} is substituted
var personalOpeners = map[string][]string{
	StoryProfessionalLearning: {
		"Been thinking about {topic} a lot lately.\n\nWhat I've realized is...\n",
		"Something I wish I knew earlier about {topic}:\n",
		"Here's what I've learned about {topic} recently:\n",
	},
	StoryChallengeOvercome: {
		"Ran into a challenge with {topic} recently.\n\nHere's how I worked through it:\n",
		"Dealing with {topic} wasn't easy, but...\n",
		"When I faced {topic}, I had to get creative.\n",
	},
	StoryInsightGained: {
		"Had an interesting realization about {topic} today.\n",
		"Something clicked for me about {topic}:\n",
		"New perspective on {topic}:\n",
	},
	StoryCareerMoment: {
		"Reflecting on my journey with {topic}.\n",
		"Career milestone moment: {topic}\n",
		"Looking back at {topic}:\n",
	},
}

var colleagueTemplates = []string{
	"My colleague {name} shared something with me yesterday that really made me think.\n\n{learned}\n\nThis is why I love working with smart people. They always have a different perspective that teaches me something new.",
	"Had a great conversation with {name} today about {topic}.\n\n{learned}\n\nWhat struck me is how simple but effective this is. Sometimes the best insights come from casual conversations with teammates.",
	"{name} showed me a technique for {topic} that I hadn't considered before.\n\n{learned}\n\nI'm definitely going to try this. It's remarkable how much you can learn from the people around you.",
}

var communityTemplates = []string{
	"At the {event} yesterday, someone mentioned something about {topic} that really stuck with me.\n\n{heard}\n\nI tried this today and it actually works. Sometimes the best insights come from community discussions, not formal research.",
	"Had an interesting discussion at the {event} about {topic}.\n\n{heard}\n\nThis really made me think. I love how these events bring together different perspectives on the same challenges.",
	"Someone at the {event} shared a tip about {topic} that I hadn't considered.\n\n{heard}\n\nThis is why I make time for these events. You always learn something new from the community.",
}

const techTemplate = `I've been working with {technology} {experience} now. Here's my {perspective}.

The theory makes it look simple. In practice, there are nuances that most documentation doesn't cover.

What surprised me most: sometimes the straightforward approach works better than the complex one.

If you're implementing {technology}, focus on the fundamentals first. Add complexity only when you can prove it helps.

Sometimes the best learning comes from actual production experience, not just tutorials.`

// pickTemplate chooses a template by the md5 of key modulo the template count,
// so the same inputs always produce the same post.
func pickTemplate(templates []string, key string) string {
	sum := md5.Sum([]byte(key))
	n := new(big.Int).SetBytes(sum[:])
	idx := n.Mod(n, big.NewInt(int64(len(templates)))).Int64()
	return templates[idx]
}

// templateStory renders the deterministic post for a story request.
func templateStory(r *StoryRequest) string {
	fill := strings.NewReplacer(
		"{topic}", r.Topic,
		"{name}", r.Name,
		"{learned}", r.Learned,
		"{technology}", r.Technology,
		"{experience}", r.Experience,
		"{perspective}", r.Perspective,
		"{event}", r.Event,
		"{heard}", r.Heard,
	)

	switch r.Kind {
	case types.KindColleague:
		return fill.Replace(pickTemplate(colleagueTemplates, r.Name+r.Topic))
	case types.KindTech:
		return fill.Replace(techTemplate)
	case types.KindCommunity:
		return fill.Replace(pickTemplate(communityTemplates, r.Event+r.Topic))
	}

	openers, ok := personalOpeners[r.storyType()]
	if !ok {
		openers = personalOpeners[StoryProfessionalLearning]
	}
	lines := []string{
		fill.Replace(pickTemplate(openers, r.Topic)),
		fmt.Sprintf("[Add your specific experience with %s here]", r.Topic),
		"",
		"Main takeaway: [What you learned]",
		"",
		"This matters because [why it's important]",
		"",
		"#ProfessionalDevelopment #Learning",
	}
	return strings.Join(lines, "\n")
}

// promptData is the placeholder set for a kind's generative prompts
func (r *StoryRequest) promptData() map[string]string {
	orUnspecified := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "Not specified"
		}
		return s
	}

	switch r.Kind {
	case types.KindColleague:
		return map[string]string{"Name": r.Name, "Topic": r.Topic, "Learned": r.Learned, "Experience": orUnspecified(r.Experience)}
	case types.KindTech:
		return map[string]string{"Technology": r.Technology, "Experience": r.Experience, "Perspective": r.Perspective, "Insights": orUnspecified(r.Insights)}
	case types.KindCommunity:
		return map[string]string{"Event": r.Event, "Topic": r.Topic, "Heard": r.Heard, "Context": orUnspecified(r.Context)}
	}
	return map[string]string{"Topic": r.Topic, "StoryType": r.storyType(), "Lines": r.lines()}
}

// promptPrefix names the prompt pair for a kind
func promptPrefix(kind types.DraftKind) string {
	switch kind {
	case types.KindColleague:
		return "colleague"
	case types.KindTech:
		return "tech"
	case types.KindCommunity:
		return "community"
	}
	return "personal"
}
