package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/post-curator/internal/db"
	"github.com/jonathan/post-curator/internal/types"
)

// PostgresStore keeps records in the drafts table of a PostgreSQL database.
type PostgresStore struct {
	db *db.DB
}

// NewPostgresStore wraps an open database. The schema is applied before use.
func NewPostgresStore(ctx context.Context, database *db.DB) (*PostgresStore, error) {
	if err := database.EnsureSchema(ctx); err != nil {
		return nil, &Error{Message: "failed to prepare schema", Cause: err}
	}
	return &PostgresStore{db: database}, nil
}

// Name identifies the backend
func (p *PostgresStore) Name() string { return "postgres" }

// Create stores a record in Draft status.
func (p *PostgresStore) Create(ctx context.Context, rec NewRecord) (string, error) {
	row, err := p.db.CreateDraft(ctx, &db.DraftInput{
		Title:     rec.Title,
		Kind:      string(rec.Kind),
		Body:      rec.Text,
		SourceURL: rec.SourceURL,
	})
	if err != nil {
		return "", &Error{Message: "failed to create record", Cause: err}
	}
	return row.ID.String(), nil
}

// List returns every record, oldest first.
func (p *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := p.db.ListDrafts(ctx)
	if err != nil {
		return nil, &Error{Message: "failed to list records", Cause: err}
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{
			ID:        row.ID.String(),
			Title:     row.Title,
			Kind:      kindOf(row.Kind),
			Status:    statusOf(row.Status),
			Text:      row.Body,
			CreatedAt: row.CreatedAt,
		}
		if row.SourceURL != nil {
			rec.SourceURL = *row.SourceURL
		}
		out = append(out, rec)
	}
	return out, nil
}

// UpdateStatus overwrites the status of one record.
func (p *PostgresStore) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return notFound(id)
	}
	found, err := p.db.UpdateDraftStatus(ctx, uid, string(status))
	if err != nil {
		return &Error{RecordID: id, Message: "failed to update status", Cause: err}
	}
	if !found {
		return notFound(id)
	}
	return nil
}

// Delete removes one record.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return notFound(id)
	}
	found, err := p.db.DeleteDraft(ctx, uid)
	if err != nil {
		return &Error{RecordID: id, Message: "failed to delete", Cause: err}
	}
	if !found {
		return notFound(id)
	}
	return nil
}
