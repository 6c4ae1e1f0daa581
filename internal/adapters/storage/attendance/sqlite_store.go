package attendance

import (
	"context"
	"database/sql"
	"fmt"

	"arff/internal/adapters/storage"
	domain "arff/internal/domain/attendance"
	"arff/internal/domain/firefighter"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Upsert persists a Record keyed by (class_id, firefighter_id, date).
// PRE: record has been validated
// POST: exactly one row exists for the key; the existing row keeps its id
func (s *SQLiteStore) Upsert(ctx context.Context, r domain.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (id, class_id, firefighter_id, date, present, recorded_by) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(class_id, firefighter_id, date) DO UPDATE SET present=excluded.present, recorded_by=excluded.recorded_by`,
		r.ID, r.ClassID, r.FirefighterID, firefighter.FormatDate(r.Date), r.Present, r.RecordedBy)
	return err
}

// ListByClass returns every mark for a class ordered by date.
func (s *SQLiteStore) ListByClass(ctx context.Context, classID string) ([]domain.Record, error) {
	return s.list(ctx,
		"SELECT id, class_id, firefighter_id, date, present, recorded_by FROM attendance WHERE class_id = ? ORDER BY date, firefighter_id",
		classID)
}

// ListByClassAndFirefighter returns one firefighter's marks in a class.
func (s *SQLiteStore) ListByClassAndFirefighter(ctx context.Context, classID, firefighterID string) ([]domain.Record, error) {
	return s.list(ctx,
		"SELECT id, class_id, firefighter_id, date, present, recorded_by FROM attendance WHERE class_id = ? AND firefighter_id = ? ORDER BY date",
		classID, firefighterID)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

func scanAll(rows *sql.Rows) ([]domain.Record, error) {
	var out []domain.Record
	for rows.Next() {
		var r domain.Record
		var date string
		if err := rows.Scan(&r.ID, &r.ClassID, &r.FirefighterID, &date, &r.Present, &r.RecordedBy); err != nil {
			return nil, err
		}
		var err error
		if r.Date, err = firefighter.ParseDate(date); err != nil {
			return nil, fmt.Errorf("attendance %s date: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
