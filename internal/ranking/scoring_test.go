package ranking

import (
	"strings"
	"testing"

	"github.com/jonathan/post-curator/internal/types"
	"github.com/stretchr/testify/assert"
)

// filler returns n words that match no scoring vocabulary
func filler(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

func TestLengthScore(t *testing.T) {
	tests := []struct {
		words int
		want  float64
	}{
		{0, -20},
		{199, -20},
		{200, 10},
		{499, 10},
		{500, 40},
		{999, 40},
		{1000, 60},
		{1499, 60},
		{1500, 80},
		{5000, 80},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lengthScore(tt.words), "words=%d", tt.words)
	}
}

func TestScore_Deterministic(t *testing.T) {
	c := &types.Candidate{
		Title:    "Stanford researchers publish benchmark results",
		URL:      "https://example.com/a",
		BodyText: filler(600) + " deployment code data",
	}

	first := Score(c)
	second := Score(c)
	assert.Equal(t, first, second)
}

func TestScore_ResearchScenario(t *testing.T) {
	c := &types.Candidate{
		Title:    "MIT Researchers Announce New Transformer Architecture",
		URL:      "https://example.com/mit",
		BodyText: filler(1200),
	}

	b := Explain(c)
	assert.Equal(t, 60.0, b.Length)
	assert.Contains(t, b.Institutions, "mit")
	assert.Contains(t, b.Institutions, "researchers")
	assert.Contains(t, b.Frameworks, "transformer")
	assert.Contains(t, b.Frameworks, "architecture")
	assert.Greater(t, Score(c), 80.0)
}

func TestScore_ClickbaitScenario(t *testing.T) {
	c := &types.Candidate{
		Title:    "You Won't Believe This AI Breakthrough!!!",
		URL:      "https://example.com/bait",
		BodyText: filler(150),
	}

	b := Explain(c)
	assert.Equal(t, -20.0, b.Length)
	assert.Equal(t, []string{"you won't believe"}, b.Clickbait)
	assert.True(t, b.TripleBang)
	assert.Equal(t, []string{"breakthrough"}, b.Professional)

	// -20 short, -15 clickbait, -10 triple bang, +3 breakthrough
	assert.Equal(t, -42.0, Score(c))
}

func TestScore_PenaltiesStack(t *testing.T) {
	c := &types.Candidate{
		Title:    "SHOCKING AI REVOLUTION IS AMAZING!!!",
		URL:      "https://example.com/caps",
		BodyText: filler(50),
	}

	b := Explain(c)
	assert.True(t, b.AllCapsTitle)
	assert.ElementsMatch(t, []string{"shocking", "amazing"}, b.Clickbait)
	assert.Equal(t, []string{"ai revolution"}, b.GenericTopics)

	// -20 -30 -10 -15 -10, unclamped
	assert.Equal(t, -85.0, Score(c))
}

func TestScore_NumericTitle(t *testing.T) {
	base := &types.Candidate{Title: "Lessons from shipping", URL: "https://example.com/1", BodyText: filler(300)}
	numbered := &types.Candidate{Title: "7 lessons from shipping", URL: "https://example.com/2", BodyText: filler(300)}

	assert.Equal(t, Score(base)+5, Score(numbered))
}

func TestScore_VocabularyTermsCountOncePerBucket(t *testing.T) {
	c := &types.Candidate{
		Title:    "notes",
		URL:      "https://example.com/x",
		BodyText: filler(250) + " platform platform platform",
	}

	b := Explain(c)
	// platform is both a framework term and a professional keyword
	assert.Equal(t, []string{"platform"}, b.Frameworks)
	assert.Equal(t, []string{"platform"}, b.Professional)
	assert.Equal(t, 10.0+10.0+3.0, Score(c))
}

func TestIsAllCaps(t *testing.T) {
	assert.True(t, isAllCaps("BIG NEWS 2024"))
	assert.False(t, isAllCaps("Big News"))
	assert.False(t, isAllCaps("2024 !!!"))
	assert.False(t, isAllCaps(""))
}
