package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/post-curator/internal/types"
)

const (
	// DefaultNotionBaseURL is the public Notion API root
	DefaultNotionBaseURL = "https://api.notion.com/v1"
	notionVersion        = "2022-06-28"

	// Notion rejects rich_text items over 2000 characters and more than 100
	// children per request.
	notionTextLimit  = 2000
	notionBlockLimit = 100

	notionMaxRetries   = 3
	defaultNotionRetry = time.Second
)

// NotionConfig configures the Notion adapter
type NotionConfig struct {
	APIKey     string
	DatabaseID string
	// BaseURL overrides the API root (tests)
	BaseURL    string
	HTTPClient *http.Client
	// RetryDelay is the wait between rate-limited attempts
	RetryDelay time.Duration
	// Warn receives non-fatal problems such as an unreadable page body
	Warn func(string)
}

// NotionStore stages records as pages in a Notion database. The status
// column may be either a native status property or a select property; the
// schema is read once and cached.
type NotionStore struct {
	cfg    NotionConfig
	client *http.Client

	mu     sync.Mutex
	schema *notionSchema
}

type notionSchema struct {
	titleProp  string
	statusProp string
	statusKind string // "status" or "select"
	typeProp   string
	typeKind   string // "select" or "rich_text"
	urlProp    string
}

// NewNotionStore creates a Notion adapter. Credentials are required.
func NewNotionStore(cfg NotionConfig) (*NotionStore, error) {
	if cfg.APIKey == "" || cfg.DatabaseID == "" {
		return nil, &Error{Message: "notion API key and database ID are required"}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNotionBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultNotionRetry
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &NotionStore{cfg: cfg, client: client}, nil
}

// Name identifies the backend
func (n *NotionStore) Name() string { return "notion" }

// notionAPIError carries a non-2xx Notion response
type notionAPIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *notionAPIError) Error() string {
	return fmt.Sprintf("notion API %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (n *NotionStore) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, n.cfg.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
		req.Header.Set("Notion-Version", notionVersion)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := n.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call notion: %w", err)
		}
		data, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read notion response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < notionMaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.cfg.RetryDelay):
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &notionAPIError{StatusCode: resp.StatusCode}
			var parsed struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if json.Unmarshal(data, &parsed) == nil {
				apiErr.Code = parsed.Code
				apiErr.Message = parsed.Message
			}
			return apiErr
		}

		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to decode notion response: %w", err)
			}
		}
		return nil
	}
}

func (n *NotionStore) loadSchema(ctx context.Context) (*notionSchema, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.schema != nil {
		return n.schema, nil
	}

	var db struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := n.do(ctx, http.MethodGet, "/databases/"+n.cfg.DatabaseID, nil, &db); err != nil {
		return nil, &Error{Message: "failed to read database schema", Cause: err}
	}

	s := &notionSchema{}
	for name, prop := range db.Properties {
		if prop.Type == "title" {
			s.titleProp = name
		}
	}
	if s.titleProp == "" {
		return nil, &Error{Message: "database has no title property"}
	}

	for _, name := range []string{"Status", "status", "State", "state"} {
		if prop, ok := db.Properties[name]; ok && (prop.Type == "status" || prop.Type == "select") {
			s.statusProp, s.statusKind = name, prop.Type
			break
		}
	}
	if s.statusProp == "" {
		// map order is random; pick the lexically first candidate so runs agree
		for name, prop := range db.Properties {
			if (prop.Type == "status" || prop.Type == "select") && name != "Type" {
				if s.statusProp == "" || name < s.statusProp {
					s.statusProp, s.statusKind = name, prop.Type
				}
			}
		}
	}
	if s.statusProp == "" {
		return nil, &Error{Message: "database has no status or select property"}
	}

	if prop, ok := db.Properties["Type"]; ok && (prop.Type == "select" || prop.Type == "rich_text") {
		s.typeProp, s.typeKind = "Type", prop.Type
	}

	for _, name := range []string{"URL", "Source URL", "Link"} {
		if prop, ok := db.Properties[name]; ok && prop.Type == "url" {
			s.urlProp = name
			break
		}
	}

	n.schema = s
	return s, nil
}

func richText(text string) []map[string]any {
	runes := []rune(text)
	var out []map[string]any
	for len(runes) > 0 {
		end := notionTextLimit
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, map[string]any{
			"type": "text",
			"text": map[string]any{"content": string(runes[:end])},
		})
		runes = runes[end:]
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out
}

func paragraphBlocks(text string) []map[string]any {
	lines := strings.Split(text, "\n")
	blocks := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, map[string]any{
			"object":    "block",
			"type":      "paragraph",
			"paragraph": map[string]any{"rich_text": richText(line)},
		})
	}
	return blocks
}

func statusValue(kind string, status types.Status) map[string]any {
	return map[string]any{kind: map[string]any{"name": string(status)}}
}

// Create stores a record in Draft status. The pack is written one paragraph
// block per line.
func (n *NotionStore) Create(ctx context.Context, rec NewRecord) (string, error) {
	schema, err := n.loadSchema(ctx)
	if err != nil {
		return "", err
	}

	props := map[string]any{
		schema.titleProp:  map[string]any{"title": richText(rec.Title)},
		schema.statusProp: statusValue(schema.statusKind, types.StatusDraft),
	}
	if schema.typeProp != "" && rec.Kind != "" {
		if schema.typeKind == "select" {
			props[schema.typeProp] = map[string]any{"select": map[string]any{"name": string(rec.Kind)}}
		} else {
			props[schema.typeProp] = map[string]any{"rich_text": richText(string(rec.Kind))}
		}
	}

	if schema.urlProp != "" && rec.SourceURL != "" {
		props[schema.urlProp] = map[string]any{"url": rec.SourceURL}
	}

	blocks := paragraphBlocks(rec.Text)
	first := blocks
	if len(first) > notionBlockLimit {
		first = blocks[:notionBlockLimit]
	}

	var page struct {
		ID string `json:"id"`
	}
	err = n.do(ctx, http.MethodPost, "/pages", map[string]any{
		"parent":     map[string]any{"database_id": n.cfg.DatabaseID},
		"properties": props,
		"children":   first,
	}, &page)
	if err != nil {
		return "", &Error{Message: "failed to create page", Cause: err}
	}

	for rest := blocks[len(first):]; len(rest) > 0; {
		chunk := rest
		if len(chunk) > notionBlockLimit {
			chunk = rest[:notionBlockLimit]
		}
		if err := n.do(ctx, http.MethodPatch, "/blocks/"+page.ID+"/children", map[string]any{"children": chunk}, nil); err != nil {
			// a truncated pack must not stay reviewable
			if archiveErr := n.Delete(context.WithoutCancel(ctx), page.ID); archiveErr != nil {
				n.warnf("failed to archive truncated page %s: %v", page.ID, archiveErr)
			}
			return "", &Error{RecordID: page.ID, Message: "failed to append content", Cause: err}
		}
		rest = rest[len(chunk):]
	}
	return page.ID, nil
}

type notionPage struct {
	ID          string                     `json:"id"`
	CreatedTime time.Time                  `json:"created_time"`
	Properties  map[string]json.RawMessage `json:"properties"`
}

type notionRichText struct {
	PlainText string `json:"plain_text"`
}

func (n *NotionStore) warnf(format string, args ...any) {
	if n.cfg.Warn != nil {
		n.cfg.Warn(fmt.Sprintf(format, args...))
	}
}

// List queries every page in the database. Only Approved pages have their
// body read; other records come back with empty Text. A page whose body cannot
// be read is returned with empty Text and a warning.
func (n *NotionStore) List(ctx context.Context) ([]Record, error) {
	schema, err := n.loadSchema(ctx)
	if err != nil {
		return nil, err
	}

	var pages []notionPage
	cursor := ""
	for {
		body := map[string]any{"page_size": 100}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var resp struct {
			Results    []notionPage `json:"results"`
			HasMore    bool         `json:"has_more"`
			NextCursor string       `json:"next_cursor"`
		}
		if err := n.do(ctx, http.MethodPost, "/databases/"+n.cfg.DatabaseID+"/query", body, &resp); err != nil {
			return nil, &Error{Message: "failed to query database", Cause: err}
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	records := make([]Record, 0, len(pages))
	for _, p := range pages {
		rec := Record{
			ID:        p.ID,
			Title:     propertyText(p.Properties[schema.titleProp]),
			Kind:      kindOf(propertyText(p.Properties[schema.typeProp])),
			Status:    statusOf(propertyText(p.Properties[schema.statusProp])),
			SourceURL: propertyText(p.Properties[schema.urlProp]),
			CreatedAt: p.CreatedTime,
		}
		if rec.Status == types.StatusApproved {
			text, err := n.pageText(ctx, p.ID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				n.warnf("skipping body of %q: %v", rec.Title, err)
			}
			rec.Text = text
		}
		records = append(records, rec)
	}
	return records, nil
}

// propertyText reads the display text of a title, rich_text, status, select or url property.
func propertyText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var prop struct {
		Type     string           `json:"type"`
		Title    []notionRichText `json:"title"`
		RichText []notionRichText `json:"rich_text"`
		Status   *struct {
			Name string `json:"name"`
		} `json:"status"`
		Select *struct {
			Name string `json:"name"`
		} `json:"select"`
		URL *string `json:"url"`
	}
	if json.Unmarshal(raw, &prop) != nil {
		return ""
	}
	switch prop.Type {
	case "title":
		return joinPlain(prop.Title)
	case "rich_text":
		return joinPlain(prop.RichText)
	case "status":
		if prop.Status != nil {
			return prop.Status.Name
		}
	case "select":
		if prop.Select != nil {
			return prop.Select.Name
		}
	case "url":
		if prop.URL != nil {
			return *prop.URL
		}
	}
	return ""
}

func joinPlain(parts []notionRichText) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.PlainText)
	}
	return sb.String()
}

var textBlockTypes = map[string]bool{
	"paragraph":          true,
	"heading_1":          true,
	"heading_2":          true,
	"heading_3":          true,
	"bulleted_list_item": true,
	"numbered_list_item": true,
	"quote":              true,
	"callout":            true,
	"to_do":              true,
	"code":               true,
}

// pageText concatenates the text of a page's blocks, one line per block.
func (n *NotionStore) pageText(ctx context.Context, pageID string) (string, error) {
	var sb strings.Builder
	cursor := ""
	for {
		path := "/blocks/" + pageID + "/children?page_size=100"
		if cursor != "" {
			path += "&start_cursor=" + cursor
		}
		var resp struct {
			Results    []map[string]json.RawMessage `json:"results"`
			HasMore    bool                         `json:"has_more"`
			NextCursor string                       `json:"next_cursor"`
		}
		if err := n.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return "", &Error{RecordID: pageID, Message: "failed to read page content", Cause: err}
		}

		for _, block := range resp.Results {
			var blockType string
			if json.Unmarshal(block["type"], &blockType) != nil || !textBlockTypes[blockType] {
				continue
			}
			var content struct {
				RichText []notionRichText `json:"rich_text"`
			}
			if json.Unmarshal(block[blockType], &content) != nil {
				continue
			}
			sb.WriteString(joinPlain(content.RichText))
			sb.WriteString("\n")
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return sb.String(), nil
}

// UpdateStatus overwrites the status of one page.
func (n *NotionStore) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	schema, err := n.loadSchema(ctx)
	if err != nil {
		return err
	}
	err = n.do(ctx, http.MethodPatch, "/pages/"+id, map[string]any{
		"properties": map[string]any{schema.statusProp: statusValue(schema.statusKind, status)},
	}, nil)
	return n.pageErr(id, "failed to update status", err)
}

// Delete archives one page; Notion has no hard delete.
func (n *NotionStore) Delete(ctx context.Context, id string) error {
	err := n.do(ctx, http.MethodPatch, "/pages/"+id, map[string]any{"archived": true}, nil)
	return n.pageErr(id, "failed to archive", err)
}

func (n *NotionStore) pageErr(id, msg string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *notionAPIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return notFound(id)
	}
	return &Error{RecordID: id, Message: msg, Cause: err}
}
