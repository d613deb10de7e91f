package review

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/post-curator/internal/types"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var sqliteMigrations embed.FS

// SQLiteStore keeps records in a local SQLite file. It is the default store
// when no hosted review tool is configured; status is edited with any SQLite client
// or the cmd tooling.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Name identifies the backend
func (s *SQLiteStore) Name() string { return "sqlite" }

func (s *SQLiteStore) migrate() error {
	entries, err := sqliteMigrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		content, err := sqliteMigrations.ReadFile("migrations/" + f)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", f, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", f, err)
		}
	}
	return nil
}

// Create stores a record in Draft status.
func (s *SQLiteStore) Create(ctx context.Context, rec NewRecord) (string, error) {
	id := uuid.NewString()
	now := s.now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drafts (id, title, kind, status, body, source_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Title, string(rec.Kind), string(types.StatusDraft), rec.Text, rec.SourceURL, now, now,
	)
	if err != nil {
		return "", &Error{Message: "failed to create record", Cause: err}
	}
	return id, nil
}

// List returns every record, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, kind, status, body, source_url, created_at FROM drafts ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, &Error{Message: "failed to list records", Cause: err}
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			rec                       Record
			kind, status, createdText string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &kind, &status, &rec.Text, &rec.SourceURL, &createdText); err != nil {
			return nil, &Error{Message: "failed to scan record", Cause: err}
		}
		rec.Kind = kindOf(kind)
		rec.Status = statusOf(status)
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdText)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Message: "failed to list records", Cause: err}
	}
	return out, nil
}

// UpdateStatus overwrites the status of one record.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status types.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE drafts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), s.now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return &Error{RecordID: id, Message: "failed to update status", Cause: err}
	}
	return requireAffected(res, id)
}

// Delete removes one record.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return &Error{RecordID: id, Message: "failed to delete", Cause: err}
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &Error{RecordID: id, Message: "failed to read result", Cause: err}
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}
