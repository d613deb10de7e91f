package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/post-curator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	id         string
	properties map[string]any
	blocks     []any
	archived   bool
	created    time.Time
}

// fakeNotion serves the subset of the Notion API the adapter uses. Queries
// and block listings paginate with small pages so cursors are exercised.
type fakeNotion struct {
	t          *testing.T
	mu         sync.Mutex
	statusType string
	pages      []*fakePage
	rateLimit  int
	requests   []string
	// brokenBodies fail block listings for these page IDs
	brokenBodies map[string]bool
	failAppend   bool
}

func (f *fakeNotion) schema() map[string]any {
	return map[string]any{
		"properties": map[string]any{
			"Name":   map[string]any{"type": "title"},
			"Status": map[string]any{"type": f.statusType},
			"Type":   map[string]any{"type": "select"},
			"URL":    map[string]any{"type": "url"},
		},
	}
}

func (f *fakeNotion) page(id string) *fakePage {
	for _, p := range f.pages {
		if p.id == id && !p.archived {
			return p
		}
	}
	return nil
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	assert.Equal(f.t, "Bearer secret", r.Header.Get("Authorization"))
	assert.Equal(f.t, notionVersion, r.Header.Get("Notion-Version"))
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if f.rateLimit > 0 {
		f.rateLimit--
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "databases":
		writeJSON(w, f.schema())

	case r.Method == http.MethodPost && r.URL.Path == "/pages":
		p := &fakePage{
			id:         fmt.Sprintf("page-%d", len(f.pages)+1),
			properties: body["properties"].(map[string]any),
			created:    time.Date(2026, 5, 6, 9, len(f.pages), 0, 0, time.UTC),
		}
		children, _ := body["children"].([]any)
		assert.LessOrEqual(f.t, len(children), notionBlockLimit)
		p.blocks = append(p.blocks, children...)
		f.pages = append(f.pages, p)
		writeJSON(w, map[string]any{"id": p.id})

	case r.Method == http.MethodPatch && len(parts) == 3 && parts[0] == "blocks":
		if f.failAppend {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		p := f.page(parts[1])
		if p == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		children, _ := body["children"].([]any)
		assert.LessOrEqual(f.t, len(children), notionBlockLimit)
		p.blocks = append(p.blocks, children...)
		writeJSON(w, map[string]any{})

	case r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "query":
		var live []*fakePage
		for _, p := range f.pages {
			if !p.archived {
				live = append(live, p)
			}
		}
		start := 0
		if c, ok := body["start_cursor"].(string); ok {
			start, _ = strconv.Atoi(c)
		}
		end := start + 1
		if end > len(live) {
			end = len(live)
		}
		var results []any
		for _, p := range live[start:end] {
			results = append(results, f.pageJSON(p))
		}
		resp := map[string]any{"results": results, "has_more": end < len(live)}
		if end < len(live) {
			resp["next_cursor"] = strconv.Itoa(end)
		}
		writeJSON(w, resp)

	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "blocks":
		if f.brokenBodies[parts[1]] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		p := f.page(parts[1])
		if p == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		start, _ := strconv.Atoi(r.URL.Query().Get("start_cursor"))
		end := start + 60
		if end > len(p.blocks) {
			end = len(p.blocks)
		}
		resp := map[string]any{"results": toPlainBlocks(p.blocks[start:end]), "has_more": end < len(p.blocks)}
		if end < len(p.blocks) {
			resp["next_cursor"] = strconv.Itoa(end)
		}
		writeJSON(w, resp)

	case r.Method == http.MethodPatch && len(parts) == 2 && parts[0] == "pages":
		p := f.page(parts[1])
		if p == nil {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]any{"code": "object_not_found", "message": "missing"})
			return
		}
		if archived, ok := body["archived"].(bool); ok {
			p.archived = archived
		}
		if props, ok := body["properties"].(map[string]any); ok {
			for k, v := range props {
				p.properties[k] = v
			}
		}
		writeJSON(w, map[string]any{"id": p.id})

	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

// pageJSON adds the "type" discriminators Notion returns on reads and
// copies text.content into plain_text.
func (f *fakeNotion) pageJSON(p *fakePage) map[string]any {
	props := map[string]any{}
	for name, raw := range p.properties {
		v := raw.(map[string]any)
		switch {
		case v["title"] != nil:
			props[name] = map[string]any{"type": "title", "title": plainTexts(v["title"])}
		case v["status"] != nil:
			props[name] = map[string]any{"type": "status", "status": v["status"]}
		case v["select"] != nil:
			props[name] = map[string]any{"type": "select", "select": v["select"]}
		case v["url"] != nil:
			props[name] = map[string]any{"type": "url", "url": v["url"]}
		}
	}
	return map[string]any{"id": p.id, "created_time": p.created.Format(time.RFC3339), "properties": props}
}

func plainTexts(raw any) []any {
	var out []any
	items, _ := raw.([]any)
	for _, item := range items {
		text := item.(map[string]any)["text"].(map[string]any)["content"]
		out = append(out, map[string]any{"plain_text": text})
	}
	return out
}

func toPlainBlocks(blocks []any) []any {
	var out []any
	for _, b := range blocks {
		block := b.(map[string]any)
		typ := block["type"].(string)
		inner := block[typ].(map[string]any)
		out = append(out, map[string]any{
			"type": typ,
			typ:    map[string]any{"rich_text": plainTexts(inner["rich_text"])},
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newNotionTest(t *testing.T, statusType string) (*NotionStore, *fakeNotion) {
	t.Helper()
	fake := &fakeNotion{t: t, statusType: statusType}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	s, err := NewNotionStore(NotionConfig{
		APIKey:     "secret",
		DatabaseID: "db1",
		BaseURL:    server.URL,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return s, fake
}

func TestNewNotionStore_RequiresCredentials(t *testing.T) {
	_, err := NewNotionStore(NotionConfig{APIKey: "k"})
	require.Error(t, err)
}

func TestNotionStore_StatusProperty(t *testing.T) {
	s, fake := newNotionTest(t, "status")
	exerciseStore(t, s)

	// the surviving page carries a native status value
	props := fake.pages[0].properties["Status"].(map[string]any)
	assert.Contains(t, props, "status")
}

func TestNotionStore_SelectProperty(t *testing.T) {
	s, fake := newNotionTest(t, "select")
	ctx := context.Background()

	id, err := s.Create(ctx, NewRecord{Title: "T", Kind: types.KindCommunity, Text: "line one\nline two"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateStatus(ctx, id, types.StatusApproved))

	props := fake.pages[0].properties["Status"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "Approved"}, props["select"])

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.StatusApproved, records[0].Status)
	assert.Equal(t, types.KindCommunity, records[0].Kind)
	assert.Equal(t, "line one\nline two\n", records[0].Text)
}

func TestNotionStore_LongPackChunks(t *testing.T) {
	s, fake := newNotionTest(t, "status")
	ctx := context.Background()

	lines := make([]string, 250)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	lines[0] = strings.Repeat("x", 4500)

	id, err := s.Create(ctx, NewRecord{Title: "Long", Text: strings.Join(lines, "\n")})
	require.NoError(t, err)
	require.Len(t, fake.pages[0].blocks, 250)
	require.NoError(t, s.UpdateStatus(ctx, id, types.StatusApproved))

	first := fake.pages[0].blocks[0].(map[string]any)["paragraph"].(map[string]any)["rich_text"].([]any)
	assert.Len(t, first, 3)

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, strings.Join(lines, "\n")+"\n", records[0].Text)
}

func TestNotionStore_ListReadsApprovedBodiesOnly(t *testing.T) {
	s, fake := newNotionTest(t, "status")
	ctx := context.Background()

	draft, err := s.Create(ctx, NewRecord{Title: "Draft", Text: "draft body"})
	require.NoError(t, err)
	approved, err := s.Create(ctx, NewRecord{Title: "Approved", Text: "approved body"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateStatus(ctx, approved, types.StatusApproved))
	fake.requests = nil

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	byID := map[string]Record{}
	for _, r := range records {
		byID[r.ID] = r
	}
	assert.Empty(t, byID[draft].Text)
	assert.Equal(t, "approved body\n", byID[approved].Text)
	assert.NotContains(t, fake.requests, "GET /blocks/"+draft+"/children")
}

func TestNotionStore_UnreadableBodyDoesNotFailList(t *testing.T) {
	var warnings []string
	fake := &fakeNotion{t: t, statusType: "status"}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	s, err := NewNotionStore(NotionConfig{
		APIKey:     "secret",
		DatabaseID: "db1",
		BaseURL:    server.URL,
		RetryDelay: time.Millisecond,
		Warn:       func(m string) { warnings = append(warnings, m) },
	})
	require.NoError(t, err)
	ctx := context.Background()

	broken, err := s.Create(ctx, NewRecord{Title: "Broken", Text: "lost"})
	require.NoError(t, err)
	healthy, err := s.Create(ctx, NewRecord{Title: "Healthy", Text: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateStatus(ctx, broken, types.StatusApproved))
	require.NoError(t, s.UpdateStatus(ctx, healthy, types.StatusApproved))
	fake.brokenBodies = map[string]bool{broken: true}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		if r.ID == broken {
			assert.Empty(t, r.Text)
		} else {
			assert.Equal(t, "kept\n", r.Text)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Broken")
}

func TestNotionStore_FailedAppendArchivesPage(t *testing.T) {
	s, fake := newNotionTest(t, "status")
	fake.failAppend = true

	lines := make([]string, notionBlockLimit+5)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}

	id, err := s.Create(context.Background(), NewRecord{Title: "Long", Text: strings.Join(lines, "\n")})
	require.Error(t, err)
	assert.Empty(t, id)
	require.Len(t, fake.pages, 1)
	assert.True(t, fake.pages[0].archived)
}

func TestNotionStore_RetriesRateLimit(t *testing.T) {
	s, fake := newNotionTest(t, "status")
	fake.rateLimit = 2

	_, err := s.Create(context.Background(), NewRecord{Title: "T", Text: "x"})
	require.NoError(t, err)
	assert.Len(t, fake.pages, 1)
}

func TestNotionStore_GivesUpAfterRetries(t *testing.T) {
	s, fake := newNotionTest(t, "status")
	fake.rateLimit = notionMaxRetries + 1

	_, err := s.List(context.Background())
	require.Error(t, err)
	var apiErr *notionAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestNotionStore_DeleteArchives(t *testing.T) {
	s, fake := newNotionTest(t, "status")
	ctx := context.Background()

	id, err := s.Create(ctx, NewRecord{Title: "T", Text: "x"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))
	assert.True(t, fake.pages[0].archived)

	err = s.Delete(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPropertyText(t *testing.T) {
	assert.Equal(t, "", propertyText(nil))
	assert.Equal(t, "Draft", propertyText(json.RawMessage(`{"type":"status","status":{"name":"Draft"}}`)))
	assert.Equal(t, "", propertyText(json.RawMessage(`{"type":"select","select":null}`)))
	assert.Equal(t, "ab", propertyText(json.RawMessage(`{"type":"rich_text","rich_text":[{"plain_text":"a"},{"plain_text":"b"}]}`)))
}
