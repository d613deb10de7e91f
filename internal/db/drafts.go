package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Draft status values as stored in the status column
const (
	DraftStatusDraft    = "Draft"
	DraftStatusApproved = "Approved"
	DraftStatusPosted   = "Posted"
)

// DraftRow is one staged draft in the drafts table
type DraftRow struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Body      string    `json:"body"`
	SourceURL *string   `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DraftInput is the data needed to stage a draft
type DraftInput struct {
	Title     string
	Kind      string
	Body      string
	SourceURL string
}

const draftColumns = `id, title, kind, status, body, source_url, created_at, updated_at`

// -----------------------------------------------------------------------------
// Draft Methods
// -----------------------------------------------------------------------------

// CreateDraft inserts a draft in Draft status
func (db *DB) CreateDraft(ctx context.Context, input *DraftInput) (*DraftRow, error) {
	var sourceURL *string
	if input.SourceURL != "" {
		sourceURL = &input.SourceURL
	}

	var row DraftRow
	err := db.pool.QueryRow(ctx,
		`INSERT INTO drafts (id, title, kind, status, body, source_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+draftColumns,
		uuid.New(), input.Title, input.Kind, DraftStatusDraft, input.Body, sourceURL,
	).Scan(&row.ID, &row.Title, &row.Kind, &row.Status, &row.Body, &row.SourceURL, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return &row, nil
}

// GetDraft retrieves a draft by ID, returning nil when it does not exist
func (db *DB) GetDraft(ctx context.Context, id uuid.UUID) (*DraftRow, error) {
	var row DraftRow
	err := db.pool.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE id = $1`,
		id,
	).Scan(&row.ID, &row.Title, &row.Kind, &row.Status, &row.Body, &row.SourceURL, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return &row, nil
}

// ListDrafts returns every draft, oldest first
func (db *DB) ListDrafts(ctx context.Context) ([]DraftRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+draftColumns+` FROM drafts ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []DraftRow
	for rows.Next() {
		var row DraftRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Kind, &row.Status, &row.Body, &row.SourceURL, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drafts: %w", err)
	}
	return drafts, nil
}

// UpdateDraftStatus sets a draft's status. It reports false when no draft has the ID.
func (db *DB) UpdateDraftStatus(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE drafts SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update draft status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteDraft removes a draft. It reports false when no draft has the ID.
func (db *DB) DeleteDraft(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
