package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/post-curator/internal/drafting"
	"github.com/jonathan/post-curator/internal/schemas"
	"github.com/jonathan/post-curator/internal/types"
	contentschemas "github.com/jonathan/post-curator/schemas"
	"gopkg.in/yaml.v3"
)

// Plan entry types
const (
	EntryPersonal  = "personal"
	EntryColleague = "colleague"
	EntryTech      = "tech"
	EntryCommunity = "community"
	EntryArticle   = "article"
)

// ContentPlan is a batch of posts to draft in one run.
type ContentPlan struct {
	Posts []PlanEntry `yaml:"posts" json:"posts"`
}

// PlanEntry is one post request. Which fields apply depends on Type.
type PlanEntry struct {
	Type string `yaml:"type" json:"type"`

	Topic     string `yaml:"topic,omitempty" json:"topic,omitempty"`
	StoryType string `yaml:"story_type,omitempty" json:"story_type,omitempty"`
	Length    string `yaml:"length,omitempty" json:"length,omitempty"`

	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Learned string `yaml:"learned,omitempty" json:"learned,omitempty"`

	Technology  string `yaml:"technology,omitempty" json:"technology,omitempty"`
	Experience  string `yaml:"experience,omitempty" json:"experience,omitempty"`
	Perspective string `yaml:"perspective,omitempty" json:"perspective,omitempty"`
	Insights    string `yaml:"insights,omitempty" json:"insights,omitempty"`

	Event   string `yaml:"event,omitempty" json:"event,omitempty"`
	Heard   string `yaml:"heard,omitempty" json:"heard,omitempty"`
	Context string `yaml:"context,omitempty" json:"context,omitempty"`

	// Article entries
	Source string   `yaml:"source,omitempty" json:"source,omitempty"`
	URLs   []string `yaml:"urls,omitempty" json:"urls,omitempty"`
	Count  int      `yaml:"count,omitempty" json:"count,omitempty"`
}

var entryKinds = map[string]types.DraftKind{
	EntryPersonal:  types.KindPersonal,
	EntryColleague: types.KindColleague,
	EntryTech:      types.KindTech,
	EntryCommunity: types.KindCommunity,
	EntryArticle:   types.KindArticle,
}

// LoadPlan reads a YAML content plan and validates it against the content plan schema.
func LoadPlan(path string) (*ContentPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content plan %s: %w", path, err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes and validates YAML content plan bytes.
func ParsePlan(data []byte) (*ContentPlan, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse content plan YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("content plan is empty")
	}
	if err := schemas.ValidateDocument(contentschemas.ContentPlan, doc); err != nil {
		return nil, fmt.Errorf("invalid content plan: %w", err)
	}

	var plan ContentPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode content plan: %w", err)
	}
	return &plan, nil
}

// Kind maps the entry type to a draft kind.
func (e PlanEntry) Kind() (types.DraftKind, bool) {
	k, ok := entryKinds[strings.ToLower(strings.TrimSpace(e.Type))]
	return k, ok
}

// IsArticle reports whether the entry asks for an article run.
func (e PlanEntry) IsArticle() bool {
	k, _ := e.Kind()
	return k == types.KindArticle
}

// StoryRequest converts a non-article entry into a drafting request.
func (e PlanEntry) StoryRequest() (drafting.StoryRequest, error) {
	req, err := e.StoryFields()
	if err != nil {
		return drafting.StoryRequest{}, err
	}
	if err := req.Validate(); err != nil {
		return drafting.StoryRequest{}, err
	}
	return req, nil
}

// StoryFields copies the entry into a story request without validating the
// per-kind required fields, for callers that fill them in afterwards.
func (e PlanEntry) StoryFields() (drafting.StoryRequest, error) {
	kind, ok := e.Kind()
	if !ok || kind == types.KindArticle {
		return drafting.StoryRequest{}, fmt.Errorf("plan entry type %q is not a story", e.Type)
	}
	return drafting.StoryRequest{
		Kind:        kind,
		Topic:       e.Topic,
		StoryType:   e.StoryType,
		Length:      e.Length,
		Name:        e.Name,
		Learned:     e.Learned,
		Technology:  e.Technology,
		Experience:  e.Experience,
		Perspective: e.Perspective,
		Insights:    e.Insights,
		Event:       e.Event,
		Heard:       e.Heard,
		Context:     e.Context,
	}, nil
}

// Describe is a short label for progress output.
func (e PlanEntry) Describe() string {
	switch {
	case e.IsArticle():
		if len(e.URLs) > 0 {
			return fmt.Sprintf("article (%d urls)", len(e.URLs))
		}
		return "article (" + e.Source + ")"
	case e.Topic != "":
		return e.Type + ": " + e.Topic
	case e.Technology != "":
		return e.Type + ": " + e.Technology
	}
	return e.Type
}
