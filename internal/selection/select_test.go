package selection

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/post-curator/internal/ranking"
	"github.com/jonathan/post-curator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

// candidate builds a candidate whose score is driven by its word count
func candidate(id string, n int, title string) types.Candidate {
	return types.Candidate{
		Title:    title,
		URL:      "https://example.com/" + id,
		BodyText: words(n),
	}
}

func TestSelect_EmptyInput(t *testing.T) {
	assert.Empty(t, Select(nil, 5))
	assert.Empty(t, Select([]types.Candidate{}, 5))
}

func TestSelect_NonPositiveMax(t *testing.T) {
	in := []types.Candidate{candidate("a", 600, "plain")}
	assert.Empty(t, Select(in, 0))
	assert.Empty(t, Select(in, -1))
}

func TestSelect_TopFiveOfQualifying(t *testing.T) {
	// two candidates fall below the threshold
	in := []types.Candidate{
		candidate("bad1", 50, "SHOCKING!!!"),
		candidate("w300", 300, "plain"),
		candidate("w600", 600, "plain"),
		candidate("w1100", 1100, "plain"),
		candidate("bad2", 100, "You won't believe this!!!"),
		candidate("w1600", 1600, "plain"),
		candidate("w250", 250, "plain"),
		candidate("w700", 700, "plain"),
		candidate("w1200", 1200, "plain"),
		candidate("w2000", 2000, "plain"),
	}

	out := SelectScored(in, 5)
	require.Len(t, out, 5)

	got := make([]string, 0, len(out))
	for _, sc := range out {
		got = append(got, strings.TrimPrefix(sc.Candidate.URL, "https://example.com/"))
		assert.GreaterOrEqual(t, sc.Score, MinScore)
	}
	assert.Equal(t, []string{"w1600", "w2000", "w1100", "w1200", "w600"}, got)

	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
	}
}

func TestSelect_KeepsBestWhenAllBelowThreshold(t *testing.T) {
	in := []types.Candidate{
		candidate("worse", 10, "SHOCKING AMAZING!!!"),
		candidate("best", 10, "SHOCKING"),
	}

	out := SelectScored(in, 3)
	require.Len(t, out, 1)
	assert.Equal(t, "https://example.com/best", out[0].Candidate.URL)
	assert.Less(t, out[0].Score, MinScore)
}

func TestSelect_ThresholdIsInclusive(t *testing.T) {
	in := []types.Candidate{candidate("edge", 10, "plain")}

	out := SelectScored(in, 1)
	require.Len(t, out, 1)
	assert.Equal(t, MinScore, out[0].Score)
}

func TestSelect_Properties(t *testing.T) {
	var in []types.Candidate
	for i := 0; i < 12; i++ {
		title := "plain"
		if i%4 == 0 {
			title = "UNBELIEVABLE!!!"
		}
		in = append(in, candidate(fmt.Sprintf("c%d", i), 100*i+50, title))
	}

	for k := 1; k <= 15; k++ {
		out := Select(in, k)
		assert.NotEmpty(t, out)
		assert.LessOrEqual(t, len(out), min(k, len(in)))
		for i := 1; i < len(out); i++ {
			assert.GreaterOrEqual(t, ranking.Score(&out[i-1]), ranking.Score(&out[i]))
		}
	}
}

func TestSelectBalanced_PrefersTechnicalMix(t *testing.T) {
	tech := func(id string, n int) types.Candidate {
		c := candidate(id, n, "plain")
		c.BodyText += " algorithm benchmark software"
		return c
	}

	in := []types.Candidate{
		candidate("g1", 1600, "plain"),
		candidate("g2", 1550, "plain"),
		candidate("g3", 1520, "plain"),
		tech("t1", 300),
		tech("t2", 250),
	}

	out, err := SelectBalanced(in, 3, 2)
	require.NoError(t, err)
	require.Len(t, out, 3)

	var technical int
	for _, sc := range out {
		if sc.Category == types.CategoryTechnical {
			technical++
		}
	}
	assert.Equal(t, 2, technical)
	assert.Equal(t, "https://example.com/g1", out[0].Candidate.URL)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
	}
}

func TestSelectBalanced_TopsUpWhenCategoryRunsDry(t *testing.T) {
	in := []types.Candidate{
		candidate("g1", 1600, "plain"),
		candidate("g2", 1200, "plain"),
		candidate("g3", 700, "plain"),
		candidate("g4", 300, "plain"),
	}

	out, err := SelectBalanced(in, 3, 2)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestSelectBalanced_InvalidTarget(t *testing.T) {
	_, err := SelectBalanced([]types.Candidate{candidate("a", 10, "x")}, 3, -1)
	require.Error(t, err)

	var selErr *Error
	assert.ErrorAs(t, err, &selErr)
}

func TestTechnicalTarget(t *testing.T) {
	assert.Equal(t, 0, TechnicalTarget(0))
	assert.Equal(t, 1, TechnicalTarget(1))
	assert.Equal(t, 2, TechnicalTarget(4))
	assert.Equal(t, 3, TechnicalTarget(5))
}

func TestReasoning(t *testing.T) {
	tests := []struct {
		name string
		c    types.Candidate
		want string
	}{
		{
			name: "long with keyword",
			c:    types.Candidate{Title: "A study", BodyText: words(900)},
			want: "Selected for substantive content (900 words), professional focus (study)",
		},
		{
			name: "medium without keyword",
			c:    types.Candidate{Title: "Notes", BodyText: words(450)},
			want: "Selected for good depth",
		},
		{
			name: "nothing applies",
			c:    types.Candidate{Title: "Notes", BodyText: words(20)},
			want: "Selected as best available option",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reasoning(&tt.c))
		})
	}
}
