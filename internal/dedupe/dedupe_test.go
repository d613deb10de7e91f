package dedupe

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/post-curator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://Example.com/post/", "https://example.com/post"},
		{"https://example.com/post#comments", "https://example.com/post"},
		{"https://example.com/post?utm_source=rss&id=3", "https://example.com/post?id=3"},
		{"  https://example.com/a  ", "https://example.com/a"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	seen, err := l.Seen(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, l.Record(ctx, "https://example.com/a/"))
	seen, err = l.Seen(ctx, "https://EXAMPLE.com/a?utm_medium=feed")
	require.NoError(t, err)
	assert.True(t, seen)
}

type brokenLedger struct{}

func (brokenLedger) Seen(context.Context, string) (bool, error) { return false, errors.New("down") }
func (brokenLedger) Record(context.Context, string) error       { return errors.New("down") }

func TestFilter(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	require.NoError(t, l.Record(ctx, "https://example.com/old"))

	candidates := []types.Candidate{
		{Title: "Old", URL: "https://example.com/old"},
		{Title: "New", URL: "https://example.com/new"},
	}

	kept := Filter(ctx, l, candidates, nil)
	require.Len(t, kept, 1)
	assert.Equal(t, "New", kept[0].Title)
}

func TestFilter_LedgerErrorKeeps(t *testing.T) {
	var warnings []string
	kept := Filter(context.Background(), brokenLedger{}, []types.Candidate{{URL: "https://example.com/x"}}, func(m string) {
		warnings = append(warnings, m)
	})
	assert.Len(t, kept, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "down")
}
