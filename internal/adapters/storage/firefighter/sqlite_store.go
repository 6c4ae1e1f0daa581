package firefighter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"arff/internal/adapters/storage"
	domain "arff/internal/domain/firefighter"
)

const columns = "id, name, tax_id, email, site, region, tier, graduation_date, last_update_date, is_not_updated, last_fire_exercise_date, is_away, away_start_date, away_end_date"

// SQLiteStore implements Store using SQLite.
// Every write bumps roster_revision in the same transaction.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new firefighter Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Firefighter by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Firefighter, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM firefighter WHERE id = ?", id)
	f, err := scan(row)
	if err == sql.ErrNoRows {
		return domain.Firefighter{}, fmt.Errorf("firefighter not found: %w", err)
	}
	return f, err
}

// GetByTaxID retrieves a Firefighter by tax id.
// PRE: taxID is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByTaxID(ctx context.Context, taxID string) (domain.Firefighter, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM firefighter WHERE tax_id = ?", taxID)
	f, err := scan(row)
	if err == sql.ErrNoRows {
		return domain.Firefighter{}, fmt.Errorf("firefighter not found: %w", err)
	}
	return f, err
}

// Save persists a Firefighter and bumps the roster revision.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); revision incremented by one
func (s *SQLiteStore) Save(ctx context.Context, f domain.Firefighter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fields := strings.Split(columns, ", ")
	placeholders := make([]string, len(fields))
	updates := make([]string, 0, len(fields)-1)
	for i, c := range fields {
		placeholders[i] = "?"
		if c != "id" {
			updates = append(updates, c+"=excluded."+c)
		}
	}
	query := fmt.Sprintf(
		"INSERT INTO firefighter (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		columns, strings.Join(placeholders, ", "), strings.Join(updates, ", "),
	)

	_, err = tx.ExecContext(ctx, query,
		f.ID,
		f.Name,
		f.TaxID,
		f.Email,
		f.Site,
		f.Region,
		string(f.Tier),
		domain.FormatDate(f.GraduationDate),
		domain.FormatDate(f.LastUpdateDate),
		f.IsNotUpdated,
		domain.FormatDate(f.LastFireExerciseDate),
		f.IsAway,
		domain.FormatDate(f.AwayStartDate),
		domain.FormatDate(f.AwayEndDate),
	)
	if err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a Firefighter from the database.
// PRE: id is non-empty
// POST: Entity removed; revision incremented only when a row was deleted
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM firefighter WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if err := bumpRevision(ctx, tx); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func bumpRevision(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, "UPDATE roster_revision SET revision = revision + 1 WHERE id = 1")
	return err
}

// Snapshot reads the revision and every record inside one read transaction.
// PRE: none
// POST: Records are ordered by site then name; Revision matches the rows returned
func (s *SQLiteStore) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer tx.Rollback()

	var snap domain.Snapshot
	if err := tx.QueryRowContext(ctx, "SELECT revision FROM roster_revision WHERE id = 1").Scan(&snap.Revision); err != nil {
		return domain.Snapshot{}, fmt.Errorf("read roster revision: %w", err)
	}
	rows, err := tx.QueryContext(ctx, "SELECT "+columns+" FROM firefighter ORDER BY site, name")
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer rows.Close()
	if snap.Records, err = scanAll(rows); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, tx.Commit()
}

// Revision reads the roster revision counter alone.
func (s *SQLiteStore) Revision(ctx context.Context) (int64, error) {
	var rev int64
	if err := s.db.QueryRowContext(ctx, "SELECT revision FROM roster_revision WHERE id = 1").Scan(&rev); err != nil {
		return 0, fmt.Errorf("read roster revision: %w", err)
	}
	return rev, nil
}

// Sites returns the distinct sites on the roster, sorted.
func (s *SQLiteStore) Sites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT site FROM firefighter ORDER BY site")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, err
		}
		out = append(out, site)
	}
	return out, rows.Err()
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Site != "" {
		where += " AND site = ?"
		args = append(args, filter.Site)
	}
	if filter.Region != "" {
		where += " AND region = ?"
		args = append(args, filter.Region)
	}
	if filter.Tier != "" {
		where += " AND tier = ?"
		args = append(args, filter.Tier)
	}
	if filter.Search != "" {
		where += " AND (name LIKE ? OR tax_id LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	}
	return where, args
}

// sortClause returns a safe ORDER BY clause. Only allowed columns are accepted.
func sortClause(filter ListFilter) string {
	allowed := map[string]string{
		"name": "name", "site": "site", "region": "region", "tier": "tier",
		"graduation_date": "graduation_date", "last_update_date": "last_update_date",
	}
	col, ok := allowed[filter.Sort]
	if !ok {
		return " ORDER BY name ASC"
	}
	dir := "ASC"
	if filter.Dir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", name ASC"
}

// Count returns the number of firefighters matching the filter.
// PRE: filter has valid parameters
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM firefighter"+where, args...).Scan(&count)
	return count, err
}

// List retrieves firefighters matching the filter.
// PRE: filter has valid parameters
// POST: Returns at most filter.Limit entities (1000 when unset)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Firefighter, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + columns + " FROM firefighter" + where + sortClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (domain.Firefighter, error) {
	var f domain.Firefighter
	var tier, grad, upd, fire, awayStart, awayEnd string
	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.TaxID,
		&f.Email,
		&f.Site,
		&f.Region,
		&tier,
		&grad,
		&upd,
		&f.IsNotUpdated,
		&fire,
		&f.IsAway,
		&awayStart,
		&awayEnd,
	); err != nil {
		return domain.Firefighter{}, err
	}
	f.Tier = domain.Tier(tier)

	// Unparseable dates load as absent.
	f.GraduationDate, _ = domain.ParseDate(grad)
	f.LastUpdateDate, _ = domain.ParseDate(upd)
	f.LastFireExerciseDate, _ = domain.ParseDate(fire)
	f.AwayStartDate, _ = domain.ParseDate(awayStart)
	f.AwayEndDate, _ = domain.ParseDate(awayEnd)
	return f, nil
}

func scanAll(rows *sql.Rows) ([]domain.Firefighter, error) {
	var out []domain.Firefighter
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
