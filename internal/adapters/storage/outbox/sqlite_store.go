package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arff/internal/adapters/storage"
	domain "arff/internal/domain/outbox"
)

const columns = "id, kind, dedup_key, payload, status, attempts, max_attempts, next_attempt_at, last_error, external_id, created_at, sent_at"

// FormatTime renders t the way outbox timestamps are stored; stored values sort lexically.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// SQLiteStore implements the outbox Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an outbox entry by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	e, err := scan(s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM outbox WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Entry{}, fmt.Errorf("outbox entry not found: %w", err)
	}
	return e, err
}

// Enqueue inserts e; a duplicate dedup key leaves the existing row untouched.
func (s *SQLiteStore) Enqueue(ctx context.Context, e domain.Entry) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(dedup_key) DO NOTHING`, args(e)...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Save persists an outbox entry to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   next_attempt_at=excluded.next_attempt_at, last_error=excluded.last_error,
		   external_id=excluded.external_id, sent_at=excluded.sent_at`, args(e)...)
	return err
}

// ListDue returns entries ready for delivery at now.
func (s *SQLiteStore) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error) {
	return s.list(ctx,
		"SELECT "+columns+" FROM outbox WHERE status IN (?, ?) AND next_attempt_at <= ? ORDER BY created_at ASC LIMIT ?",
		domain.StatusPending, domain.StatusRetrying, FormatTime(now), limit)
}

// ListByStatus returns entries in status, most recent first.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error) {
	return s.list(ctx,
		"SELECT "+columns+" FROM outbox WHERE status = ? ORDER BY created_at DESC LIMIT ?", status, limit)
}

func (s *SQLiteStore) list(ctx context.Context, query string, a ...any) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func args(e domain.Entry) []any {
	return []any{
		e.ID, e.Kind, e.DedupKey, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		FormatTime(e.NextAttemptAt), e.LastError, e.ExternalID, FormatTime(e.CreatedAt), FormatTime(e.SentAt),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Entry, error) {
	var e domain.Entry
	var next, created, sent string
	err := row.Scan(&e.ID, &e.Kind, &e.DedupKey, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
		&next, &e.LastError, &e.ExternalID, &created, &sent)
	if err != nil {
		return domain.Entry{}, err
	}
	e.NextAttemptAt = parseTime(next)
	e.CreatedAt = parseTime(created)
	e.SentAt = parseTime(sent)
	return e, nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
