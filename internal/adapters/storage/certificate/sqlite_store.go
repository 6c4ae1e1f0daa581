package certificate

import (
	"context"
	"time"

	"arff/internal/adapters/storage"
	domain "arff/internal/domain/certificate"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new certificate Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Issue numbers and stores c in one transaction.
// PRE: c.FirefighterID, CourseID, ClassID and IssuedAt are set
// POST: Returned certificate carries a number unique within its issue year
// INVARIANT: a firefighter gets at most one certificate per class
func (s *SQLiteStore) Issue(ctx context.Context, c domain.Certificate) (domain.Certificate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Certificate{}, err
	}
	defer tx.Rollback()

	year := c.IssuedAt.Year()
	var seq int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO certificate_sequence (year, last) VALUES (?, 1)
		 ON CONFLICT(year) DO UPDATE SET last = last + 1
		 RETURNING last`, year).Scan(&seq)
	if err != nil {
		return domain.Certificate{}, err
	}
	c.Number = domain.FormatNumber(year, seq)
	if err := c.Validate(); err != nil {
		return domain.Certificate{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO certificate (id, number, firefighter_id, course_id, class_id, issued_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Number, c.FirefighterID, c.CourseID, c.ClassID, c.IssuedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return domain.Certificate{}, err
	}
	return c, tx.Commit()
}

// ListByFirefighter returns a firefighter's certificates, newest first.
func (s *SQLiteStore) ListByFirefighter(ctx context.Context, firefighterID string) ([]domain.Certificate, error) {
	return s.list(ctx, "WHERE firefighter_id = ? ORDER BY issued_at DESC, number DESC", firefighterID)
}

// ListByClass returns the certificates issued for one class.
func (s *SQLiteStore) ListByClass(ctx context.Context, classID string) ([]domain.Certificate, error) {
	return s.list(ctx, "WHERE class_id = ? ORDER BY number", classID)
}

func (s *SQLiteStore) list(ctx context.Context, clause string, args ...any) ([]domain.Certificate, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, number, firefighter_id, course_id, class_id, issued_at FROM certificate "+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Certificate
	for rows.Next() {
		var c domain.Certificate
		var issued string
		if err := rows.Scan(&c.ID, &c.Number, &c.FirefighterID, &c.CourseID, &c.ClassID, &issued); err != nil {
			return nil, err
		}
		c.IssuedAt, _ = time.Parse(time.RFC3339, issued)
		out = append(out, c)
	}
	return out, rows.Err()
}
