package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusApproved, true},
		{StatusApproved, StatusPosted, true},
		{StatusDraft, StatusPosted, false},
		{StatusPosted, StatusApproved, false},
		{StatusApproved, StatusDraft, false},
		{StatusPosted, StatusPosted, false},
		{Status("Not Reviewed"), StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" approved ")
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, s)

	s, ok = ParseStatus("Not Reviewed")
	assert.False(t, ok)
	assert.Equal(t, Status("Not Reviewed"), s)
	assert.False(t, s.IsKnown())
}

func TestDraft_ReadyForApproval(t *testing.T) {
	d := Draft{Title: "t", PostText: "  \n"}
	assert.Error(t, d.ReadyForApproval())

	d.PostText = "Something worth reading."
	assert.NoError(t, d.ReadyForApproval())
}

func TestDraft_Section(t *testing.T) {
	d := Draft{Sections: []Section{
		{Heading: "ARTICLE SUMMARY", Content: "[• one]"},
		{Heading: "WHY THIS MATTERS", Content: "Selected for good depth"},
	}}

	got, ok := d.Section("WHY THIS MATTERS")
	assert.True(t, ok)
	assert.Equal(t, "Selected for good depth", got)

	_, ok = d.Section("missing")
	assert.False(t, ok)
}
