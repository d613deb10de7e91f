package review

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/post-curator/internal/types"
)

// CleanupOptions selects which records a retention pass removes
type CleanupOptions struct {
	// OlderThan is the minimum record age
	OlderThan time.Duration
	// Status restricts deletion to one status. Empty selects junk records
	// (Draft or unrecognized status).
	Status types.Status
	// DryRun reports what would be deleted without deleting
	DryRun bool
	Now    func() time.Time
}

// CleanupResult reports a retention pass
type CleanupResult struct {
	Selected []Record
	Deleted  int
	Failed   map[string]error
}

// Cleanup deletes old records. Posted records are never selected.
func Cleanup(ctx context.Context, s Store, opts CleanupOptions) (*CleanupResult, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Status == types.StatusPosted {
		return nil, fmt.Errorf("refusing to clean up %s records", types.StatusPosted)
	}

	records, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	cutoff := opts.Now().Add(-opts.OlderThan)
	result := &CleanupResult{Failed: make(map[string]error)}
	for _, rec := range records {
		if !cleanupCandidate(rec, opts.Status, cutoff) {
			continue
		}
		result.Selected = append(result.Selected, rec)
	}

	if opts.DryRun {
		return result, nil
	}

	for _, rec := range result.Selected {
		if err := s.Delete(ctx, rec.ID); err != nil {
			result.Failed[rec.ID] = err
			continue
		}
		result.Deleted++
	}
	return result, nil
}

func cleanupCandidate(rec Record, status types.Status, cutoff time.Time) bool {
	if rec.Status == types.StatusPosted {
		return false
	}
	// undated records cannot be aged
	if rec.CreatedAt.IsZero() || !rec.CreatedAt.Before(cutoff) {
		return false
	}
	if status != "" {
		return rec.Status == status
	}
	return rec.Status == types.StatusDraft || rec.Status == ""
}
