// Package dedupe records which source URLs already have a staged draft so
// repeated runs do not draft the same article twice.
package dedupe

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/jonathan/post-curator/internal/types"
)

// Ledger remembers staged source URLs
type Ledger interface {
	// Seen reports whether the URL was recorded before
	Seen(ctx context.Context, rawURL string) (bool, error)
	// Record marks the URL as staged
	Record(ctx context.Context, rawURL string) error
}

// Normalize reduces a URL to the form used as ledger key: lowercased scheme
// and host, no fragment, no utm_* tracking parameters, no trailing slash.
// Unparseable input is returned trimmed.
func Normalize(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return trimmed
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	u.Path = strings.TrimRight(u.Path, "/")

	return u.String()
}

// Filter drops candidates whose URL is already recorded. A ledger error is
// reported through warn and the candidate is kept.
func Filter(ctx context.Context, l Ledger, candidates []types.Candidate, warn func(string)) []types.Candidate {
	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		seen, err := l.Seen(ctx, c.URL)
		if err != nil {
			if warn != nil {
				warn(fmt.Sprintf("staged-URL ledger unavailable for %s: %v", c.URL, err))
			}
			out = append(out, c)
			continue
		}
		if !seen {
			out = append(out, c)
		}
	}
	return out
}

// MemoryLedger keeps the ledger for the lifetime of the process
type MemoryLedger struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryLedger creates an empty ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]struct{})}
}

func (m *MemoryLedger) Seen(_ context.Context, rawURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[Normalize(rawURL)]
	return ok, nil
}

func (m *MemoryLedger) Record(_ context.Context, rawURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[Normalize(rawURL)] = struct{}{}
	return nil
}
