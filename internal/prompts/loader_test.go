package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(DraftingFile, "polish-system")
	require.NoError(t, err)
	assert.Contains(t, prompt, "authentic voice")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(DraftingFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_ValueContainingPlaceholder(t *testing.T) {
	// substituted values are not expanded again
	got := Format("{{.A}} {{.B}}", map[string]string{"A": "{{.B}}", "B": "x"})
	assert.Equal(t, "{{.B}} x", got)
}

func TestRender_MissingField(t *testing.T) {
	_, err := Render(DraftingFile, "colleague-user", map[string]string{"Name": "Sam"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.Topic}}")
}

func TestRender_BatchPrompts(t *testing.T) {
	system, err := Render(DraftingFile, "batch-system", map[string]string{"Count": "3"})
	require.NoError(t, err)
	assert.Contains(t, system, "EXACTLY 3 articles")
	assert.Contains(t, system, "LINKEDIN POST:")

	user, err := Render(DraftingFile, "batch-user", map[string]string{
		"Count":     "3",
		"Total":     "7",
		"Technical": "2",
		"Articles":  "ARTICLE 1:",
	})
	require.NoError(t, err)
	assert.Contains(t, user, "MUST SELECT EXACTLY 3 ARTICLES FROM THESE 7 ARTICLES.")
}

func TestList(t *testing.T) {
	keys, err := List(DraftingFile)
	require.NoError(t, err)

	for _, want := range []string{
		"article-entry", "batch-system", "batch-user",
		"personal-system", "personal-user",
		"colleague-system", "colleague-user",
		"tech-system", "tech-user",
		"community-system", "community-user",
		"polish-system", "polish-user",
	} {
		assert.Contains(t, keys, want)
	}
	assert.IsIncreasing(t, keys)
}
