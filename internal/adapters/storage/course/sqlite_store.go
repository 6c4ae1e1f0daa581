package course

import (
	"context"
	"database/sql"
	"fmt"

	"arff/internal/adapters/storage"
	domain "arff/internal/domain/course"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new course Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Course by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Course, error) {
	return s.getOne(ctx, "id", id)
}

// GetByCode retrieves a Course by its unique code.
// PRE: code is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByCode(ctx context.Context, code string) (domain.Course, error) {
	return s.getOne(ctx, "code", code)
}

func (s *SQLiteStore) getOne(ctx context.Context, col, val string) (domain.Course, error) {
	var c domain.Course
	err := s.db.QueryRowContext(ctx,
		"SELECT id, code, name, kind, hours, description FROM course WHERE "+col+" = ?", val,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Kind, &c.Hours, &c.Description)
	if err == sql.ErrNoRows {
		return domain.Course{}, fmt.Errorf("course not found: %w", err)
	}
	return c, err
}

// Save persists a Course to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, c domain.Course) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO course (id, code, name, kind, hours, description) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET code=excluded.code, name=excluded.name, kind=excluded.kind,
		   hours=excluded.hours, description=excluded.description`,
		c.ID, c.Code, c.Name, c.Kind, c.Hours, c.Description)
	return err
}

// Delete removes a Course. Fails while classes still reference it.
// PRE: id is non-empty
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM course WHERE id = ?", id)
	return err
}

// List returns every course ordered by code.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Course, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, code, name, kind, hours, description FROM course ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Kind, &c.Hours, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
