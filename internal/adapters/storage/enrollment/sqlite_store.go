package enrollment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"arff/internal/adapters/storage"
	domain "arff/internal/domain/enrollment"
)

const columns = "id, class_id, firefighter_id, status, grade, enrolled_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new enrollment Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Enrollment by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Enrollment, error) {
	e, err := scan(s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM enrollment WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Enrollment{}, fmt.Errorf("enrollment not found: %w", err)
	}
	return e, err
}

// GetByClassAndFirefighter retrieves the enrollment of one firefighter in one class.
func (s *SQLiteStore) GetByClassAndFirefighter(ctx context.Context, classID, firefighterID string) (domain.Enrollment, error) {
	e, err := scan(s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM enrollment WHERE class_id = ? AND firefighter_id = ?", classID, firefighterID))
	if err == sql.ErrNoRows {
		return domain.Enrollment{}, fmt.Errorf("enrollment not found: %w", err)
	}
	return e, err
}

// Save persists an Enrollment to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, e domain.Enrollment) error {
	var grade any
	if e.Grade != nil {
		grade = *e.Grade
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollment (`+columns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status, grade=excluded.grade`,
		e.ID, e.ClassID, e.FirefighterID, e.Status, grade, e.EnrolledAt.UTC().Format(time.RFC3339))
	return err
}

// ListByClass returns a class's enrollments in enrollment order.
func (s *SQLiteStore) ListByClass(ctx context.Context, classID string) ([]domain.Enrollment, error) {
	return s.list(ctx, "SELECT "+columns+" FROM enrollment WHERE class_id = ? ORDER BY enrolled_at, id", classID)
}

// ListByFirefighter returns a firefighter's enrollments, most recent first.
func (s *SQLiteStore) ListByFirefighter(ctx context.Context, firefighterID string) ([]domain.Enrollment, error) {
	return s.list(ctx, "SELECT "+columns+" FROM enrollment WHERE firefighter_id = ? ORDER BY enrolled_at DESC", firefighterID)
}

// CountActive counts seats held in a class.
func (s *SQLiteStore) CountActive(ctx context.Context, classID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM enrollment WHERE class_id = ? AND status <> ?", classID, domain.StatusWithdrawn,
	).Scan(&n)
	return n, err
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Enrollment
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Enrollment, error) {
	var e domain.Enrollment
	var grade sql.NullFloat64
	var enrolledAt string
	if err := row.Scan(&e.ID, &e.ClassID, &e.FirefighterID, &e.Status, &grade, &enrolledAt); err != nil {
		return domain.Enrollment{}, err
	}
	if grade.Valid {
		g := grade.Float64
		e.Grade = &g
	}
	e.EnrolledAt, _ = time.Parse(time.RFC3339, enrolledAt)
	return e, nil
}
