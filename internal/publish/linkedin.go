package publish

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
	// DefaultAPIBaseURL is the LinkedIn REST root
	DefaultAPIBaseURL = "https://api.linkedin.com/v2"
	linkedInVersion   = "202401"
	feedURLPrefix     = "https://www.linkedin.com/feed/update/"
)

// Publisher sends final post text to the social platform.
type Publisher interface {
	Publish(ctx context.Context, text string) (*types.PublishResult, error)
}

// LinkedIn publishes member shares through the UGC posts API.
type LinkedIn struct {
	token   *Token
	baseURL string
	client  *http.Client
	now     func() time.Time

	mu      sync.Mutex
	subject string
}

// LinkedInOption configures a LinkedIn publisher
type LinkedInOption func(*LinkedIn)

// WithBaseURL overrides the API root
func WithBaseURL(u string) LinkedInOption {
	return func(l *LinkedIn) { l.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *http.Client) LinkedInOption {
	return func(l *LinkedIn) { l.client = c }
}

// WithClock overrides the clock used for PublishedAt
func WithClock(now func() time.Time) LinkedInOption {
	return func(l *LinkedIn) { l.now = now }
}

// NewLinkedIn creates a publisher for the given token.
func NewLinkedIn(tok *Token, opts ...LinkedInOption) (*LinkedIn, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrNoCredential
	}
	l := &LinkedIn{
		token:   tok,
		baseURL: DefaultAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if sub, ok := tok.Subject(); ok {
		l.subject = sub
	}
	return l, nil
}

func (l *LinkedIn) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+l.token.AccessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	req.Header.Set("LinkedIn-Version", linkedInVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Subject returns the member id used in the author URN, calling the userinfo
// endpoint when the token carried no id_token.
func (l *LinkedIn) Subject(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.subject != "" {
		return l.subject, nil
	}

	req, err := l.newRequest(ctx, http.MethodGet, "/userinfo", nil)
	if err != nil {
		return "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", &Error{Message: "failed to fetch profile", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{StatusCode: resp.StatusCode, Message: "failed to fetch profile", Cause: responseCause(resp)}
	}

	var info struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", &Error{Message: "failed to decode profile", Cause: err}
	}
	if info.Sub == "" {
		return "", &Error{Message: "profile response has no sub"}
	}
	l.subject = info.Sub
	return l.subject, nil
}

type ugcPost struct {
	Author          string            `json:"author"`
	LifecycleState  string            `json:"lifecycleState"`
	SpecificContent map[string]any    `json:"specificContent"`
	Visibility      map[string]string `json:"visibility"`
}

// Publish creates a public text share. Only HTTP 201 counts as success; the
// result's PostID and CanonicalURL are empty when the response carried no id.
func (l *LinkedIn) Publish(ctx context.Context, text string) (*types.PublishResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Message: "refusing to publish empty text"}
	}

	sub, err := l.Subject(ctx)
	if err != nil {
		return nil, err
	}

	post := ugcPost{
		Author:         "urn:li:person:" + sub,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]string{"text": text},
				"shareMediaCategory": "NONE",
			},
		},
		Visibility: map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	}

	req, err := l.newRequest(ctx, http.MethodPost, "/ugcPosts", post)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &Error{Message: "failed to create post", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "failed to create post", Cause: responseCause(resp)}
	}

	id := resp.Header.Get("X-RestLi-Id")
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && len(bytes.TrimSpace(body)) > 0 {
		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &created); err == nil && created.ID != "" {
			id = created.ID
		}
	}

	// 201 means the share exists; a missing id only loses the canonical URL
	result := &types.PublishResult{PublishedAt: l.now()}
	if id != "" {
		result.PostID = id
		result.CanonicalURL = feedURLPrefix + id
	}
	return result, nil
}

// responseCause turns an error response body into an error value
func responseCause(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return errors.New(msg)
}
