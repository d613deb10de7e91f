package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       Candidate
		wantErr bool
	}{
		{
			name: "valid",
			c:    Candidate{Title: "A title", URL: "https://example.com/a"},
		},
		{
			name:    "missing url",
			c:       Candidate{Title: "A title"},
			wantErr: true,
		},
		{
			name:    "malformed url",
			c:       Candidate{Title: "A title", URL: "not a url"},
			wantErr: true,
		},
		{
			name:    "missing title",
			c:       Candidate{URL: "https://example.com/a"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCandidate_WordCount(t *testing.T) {
	c := Candidate{BodyText: "  one two\tthree\nfour  "}
	assert.Equal(t, 4, c.WordCount())

	empty := Candidate{}
	assert.Equal(t, 0, empty.WordCount())
}

func TestFilterScoreable(t *testing.T) {
	in := []Candidate{
		{Title: "ok", URL: "https://example.com/1", BodyText: "body"},
		{Title: "empty body", URL: "https://example.com/2", BodyText: "   "},
		{Title: "bad url", URL: "::", BodyText: "body"},
		{Title: "ok too", URL: "https://example.com/4", BodyText: "more body"},
	}

	out := FilterScoreable(in)
	assert.Len(t, out, 2)
	assert.Equal(t, "https://example.com/1", out[0].URL)
	assert.Equal(t, "https://example.com/4", out[1].URL)
}
