package review

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/post-curator/internal/types"
)

// MemoryStore keeps records in process memory. It backs tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
	order   []string
	now     func() time.Time
}

// NewMemoryStore creates an empty store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{records: make(map[string]*Record), now: now}
}

// Name identifies the backend
func (m *MemoryStore) Name() string { return "memory" }

// Create stores a record in Draft status.
func (m *MemoryStore) Create(_ context.Context, rec NewRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.records[id] = &Record{
		ID:        id,
		Title:     rec.Title,
		Kind:      rec.Kind,
		Status:    types.StatusDraft,
		Text:      rec.Text,
		SourceURL: rec.SourceURL,
		CreatedAt: m.now(),
	}
	m.order = append(m.order, id)
	return id, nil
}

// Put inserts a record as-is, replacing any record with the same ID.
// It lets callers seed records in any status.
func (m *MemoryStore) Put(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, exists := m.records[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.records[rec.ID] = &rec
}

// List returns copies of all records in insertion order.
func (m *MemoryStore) List(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.records[id])
	}
	return out, nil
}

// Get returns a copy of one record.
func (m *MemoryStore) Get(id string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// UpdateStatus overwrites the status of one record.
func (m *MemoryStore) UpdateStatus(_ context.Context, id string, status types.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return notFound(id)
	}
	rec.Status = status
	return nil
}

// Delete removes one record.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return notFound(id)
	}
	delete(m.records, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
