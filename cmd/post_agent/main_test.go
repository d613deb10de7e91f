package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/post-curator/internal/config"
	"github.com/jonathan/post-curator/internal/dedupe"
	"github.com/jonathan/post-curator/internal/review"
	"github.com/jonathan/post-curator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears provider and store settings a developer .env may carry
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY",
		"NOTION_API_KEY", "NOTION_DATABASE_ID", "DATABASE_URL", "REDIS_URL",
		"LINKEDIN_ACCESS_TOKEN", "LINKEDIN_CLIENT_ID", "LINKEDIN_CLIENT_SECRET", "LINKEDIN_TOKEN_KEY",
		"POLL_INTERVAL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("REVIEW_STORE", config.BackendSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "post_agent.db"))
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	return rootCmd.Execute()
}

// executeWithInput runs a command with stdin read from input and returns its stdout
func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() { rootCmd.SetIn(os.Stdin) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitList(" https://a.example, https://b.example ,"))
	assert.Equal(t, []string{"x", "y"}, splitList("x\ny"))
	assert.Empty(t, splitList(" , "))
}

func TestLoadCandidates(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`[{"title":"A","url":"https://example.com/a","body_text":"words here"}]`), 0644))
	candidates, err := loadCandidates(valid)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://example.com/a", candidates[0].URL)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`[{"url":"https://example.com/a"}]`), 0644))
	_, err = loadCandidates(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid candidates file")

	_, err = loadCandidates(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	s, release, err := openStore(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Name())
	release()

	cfg.Store.Backend = config.BackendSQLite
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "store.db")
	s, release, err = openStore(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.Name())
	release()

	cfg.Store.Backend = config.BackendPostgres
	_, _, err = openStore(ctx, cfg)
	assert.True(t, errors.Is(err, config.ErrMissingCredential))

	cfg.Store.Backend = "etcd"
	_, _, err = openStore(ctx, cfg)
	assert.Error(t, err)
}

func TestOpenLedger_FallsBackToMemory(t *testing.T) {
	cfg := config.Default()
	l, release := openLedger(context.Background(), cfg)
	defer release()
	assert.IsType(t, &dedupe.MemoryLedger{}, l)

	cfg.Store.RedisURL = "redis://127.0.0.1:1/0"
	l, release2 := openLedger(context.Background(), cfg)
	defer release2()
	assert.IsType(t, &dedupe.MemoryLedger{}, l)
}

func TestPolishSource(t *testing.T) {
	t.Cleanup(func() { polishInput, polishText = "", "" })

	polishInput, polishText = "", ""
	_, err := polishSource()
	assert.Error(t, err)

	polishText = "my draft"
	text, err := polishSource()
	require.NoError(t, err)
	assert.Equal(t, "my draft", text)

	polishText = ""
	polishInput = filepath.Join(t.TempDir(), "draft.txt")
	require.NoError(t, os.WriteFile(polishInput, []byte("from file\n"), 0644))
	text, err = polishSource()
	require.NoError(t, err)
	assert.Equal(t, "from file\n", text)
}

func TestStoryCommand_WritesPackFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "story.txt")

	err := execute(t, "story", "--type", "tech",
		"--technology", "Go", "--experience", "five years", "--perspective", "simplicity",
		"--strategy", "template", "--output", "file", "--save", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TECHNICAL PERSPECTIVE")
	assert.Contains(t, string(data), "LINKEDIN POST:")
}

func TestStoryCommand_MissingFields(t *testing.T) {
	isolateEnv(t)
	t.Cleanup(func() { storyEntry = config.PlanEntry{} })

	storyEntry = config.PlanEntry{}
	err := execute(t, "story", "--type", "colleague", "--name", "Sam", "--strategy", "template", "--output", "console")
	assert.Error(t, err)
}

func TestStoryCommand_Interview(t *testing.T) {
	isolateEnv(t)
	t.Cleanup(func() {
		storyEntry = config.PlanEntry{}
		storyInterview = false
	})
	storyEntry = config.PlanEntry{}
	path := filepath.Join(t.TempDir(), "story.txt")

	answers := "Write the failing test first.\nI used to test after merging.\nFewer regressions reach review.\n"
	out, err := executeWithInput(t, answers, "story", "--interview", "--type", "colleague",
		"--name", "Sam", "--topic", "testing",
		"--strategy", "template", "--output", "file", "--save", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Question 3 of 3:")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Write the failing test first.")
	assert.Contains(t, string(data), "Sam")
}

func TestStoryCommand_InterviewNeedsAnswers(t *testing.T) {
	isolateEnv(t)
	t.Cleanup(func() {
		storyEntry = config.PlanEntry{}
		storyInterview = false
	})
	storyEntry = config.PlanEntry{}

	_, err := executeWithInput(t, "", "story", "--interview", "--type", "colleague",
		"--strategy", "template", "--output", "console")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interview ended")
}

func TestPendingRecords(t *testing.T) {
	records := []review.Record{
		{ID: "1", Status: types.StatusDraft},
		{ID: "2", Status: types.StatusApproved},
		{ID: "3", Status: types.StatusDraft},
		{ID: "4", Status: types.StatusPosted},
	}

	got := pendingRecords(records, types.StatusDraft)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	assert.Empty(t, pendingRecords(records[:1], types.StatusApproved))
}

func TestReviewCommand(t *testing.T) {
	isolateEnv(t)
	t.Cleanup(func() { reviewStatus = string(types.StatusDraft) })

	ctx := context.Background()
	store, err := review.OpenSQLite(os.Getenv("SQLITE_PATH"))
	require.NoError(t, err)
	draftID, err := store.Create(ctx, review.NewRecord{Title: "Waiting draft", Kind: types.KindArticle, Text: "x", SourceURL: "https://example.com/a"})
	require.NoError(t, err)
	approvedID, err := store.Create(ctx, review.NewRecord{Title: "Ready post", Kind: types.KindPersonal, Text: "y"})
	require.NoError(t, err)
	require.NoError(t, store.UpdateStatus(ctx, approvedID, types.StatusApproved))
	require.NoError(t, store.Close())

	out, err := executeWithInput(t, "", "review")
	require.NoError(t, err)
	assert.Contains(t, out, "Waiting draft")
	assert.Contains(t, out, "ID: "+draftID)
	assert.Contains(t, out, "Source: https://example.com/a")
	assert.NotContains(t, out, "Ready post")

	out, err = executeWithInput(t, "", "review", "--status", "approved")
	require.NoError(t, err)
	assert.Contains(t, out, "Ready post")
	assert.NotContains(t, out, "Waiting draft")
}

func TestReviewCommand_NothingPending(t *testing.T) {
	isolateEnv(t)

	out, err := executeWithInput(t, "", "review")
	require.NoError(t, err)
	assert.Contains(t, out, "No Draft records")
}

func TestReviewCommand_RejectsUnknownStatus(t *testing.T) {
	isolateEnv(t)
	t.Cleanup(func() { reviewStatus = string(types.StatusDraft) })

	_, err := executeWithInput(t, "", "review", "--status", "Archived")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestPlanCommand_InvalidPlan(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "plan.yml")
	require.NoError(t, os.WriteFile(path, []byte("posts:\n  - type: personal\n"), 0644))

	err := execute(t, "plan", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid content plan")
}

func TestCleanupCommand(t *testing.T) {
	isolateEnv(t)
	t.Cleanup(func() {
		cleanupNoDryRun = false
		cleanupStatus = ""
		cleanupOlderThan = 30
	})

	store, err := review.OpenSQLite(os.Getenv("SQLITE_PATH"))
	require.NoError(t, err)
	id, err := store.Create(context.Background(), review.NewRecord{Title: "old", Kind: types.KindPersonal, Text: "x"})
	require.NoError(t, err)
	require.NoError(t, store.Close())
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, execute(t, "cleanup", "--older-than", "0"))
	store, err = review.OpenSQLite(os.Getenv("SQLITE_PATH"))
	require.NoError(t, err)
	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1, "dry run keeps records")
	require.NoError(t, store.Close())

	require.NoError(t, execute(t, "cleanup", "--older-than", "0", "--no-dry-run"))
	store, err = review.OpenSQLite(os.Getenv("SQLITE_PATH"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	records, err = store.List(context.Background())
	require.NoError(t, err)
	for _, rec := range records {
		assert.NotEqual(t, id, rec.ID)
	}
}

func TestCleanupCommand_RejectsUnknownStatus(t *testing.T) {
	isolateEnv(t)
	t.Cleanup(func() { cleanupStatus = "" })

	err := execute(t, "cleanup", "--status", "Archived")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestPollCommand_NeedsCredential(t *testing.T) {
	isolateEnv(t)
	t.Setenv("LINKEDIN_TOKEN_FILE", filepath.Join(t.TempDir(), "none.json"))

	err := execute(t, "poll", "--once")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingCredential))
}
