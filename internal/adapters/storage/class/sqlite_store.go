package class

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"arff/internal/adapters/storage"
	domain "arff/internal/domain/class"
	"arff/internal/domain/firefighter"
)

const columns = "id, course_id, site, instructor, start_date, end_date, capacity, status"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new class Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Class by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Class, error) {
	c, err := scan(s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM class WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Class{}, fmt.Errorf("class not found: %w", err)
	}
	return c, err
}

// Save persists a Class to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, c domain.Class) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO class (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET course_id=excluded.course_id, site=excluded.site,
		   instructor=excluded.instructor, start_date=excluded.start_date, end_date=excluded.end_date,
		   capacity=excluded.capacity, status=excluded.status`,
		c.ID, c.CourseID, c.Site, c.Instructor,
		firefighter.FormatDate(c.StartDate), firefighter.FormatDate(c.EndDate),
		c.Capacity, c.Status)
	return err
}

// List returns classes matching the filter, soonest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Class, error) {
	query := "SELECT " + columns + " FROM class WHERE 1=1"
	var args []any
	if filter.Site != "" {
		query += " AND site = ?"
		args = append(args, filter.Site)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.CourseID != "" {
		query += " AND course_id = ?"
		args = append(args, filter.CourseID)
	}
	if filter.Year != 0 {
		query += " AND substr(start_date, 1, 4) = ?"
		args = append(args, strconv.Itoa(filter.Year))
	}
	query += " ORDER BY start_date, site"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Class
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByCourse returns how many classes reference courseID.
func (s *SQLiteStore) CountByCourse(ctx context.Context, courseID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM class WHERE course_id = ?", courseID).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Class, error) {
	var c domain.Class
	var start, end string
	if err := row.Scan(&c.ID, &c.CourseID, &c.Site, &c.Instructor, &start, &end, &c.Capacity, &c.Status); err != nil {
		return domain.Class{}, err
	}
	var err error
	if c.StartDate, err = firefighter.ParseDate(start); err != nil {
		return domain.Class{}, fmt.Errorf("class %s start_date: %w", c.ID, err)
	}
	if c.EndDate, err = firefighter.ParseDate(end); err != nil {
		return domain.Class{}, fmt.Errorf("class %s end_date: %w", c.ID, err)
	}
	return c, nil
}
