package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order; append only, never edit a released step.
var migrations = []migration{
	{
		version: 1,
		name:    "roster",
		stmts: []string{
			`CREATE TABLE firefighter (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				tax_id TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				site TEXT NOT NULL,
				region TEXT NOT NULL DEFAULT '',
				tier TEXT NOT NULL,
				graduation_date TEXT NOT NULL DEFAULT '',
				last_update_date TEXT NOT NULL DEFAULT '',
				is_not_updated INTEGER NOT NULL DEFAULT 0,
				last_fire_exercise_date TEXT NOT NULL DEFAULT '',
				is_away INTEGER NOT NULL DEFAULT 0,
				away_start_date TEXT NOT NULL DEFAULT '',
				away_end_date TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX idx_firefighter_site ON firefighter(site)`,
			`CREATE UNIQUE INDEX idx_firefighter_tax_id ON firefighter(tax_id) WHERE tax_id <> ''`,
			`CREATE TABLE roster_revision (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				revision INTEGER NOT NULL
			)`,
			`INSERT INTO roster_revision (id, revision) VALUES (1, 0)`,
		},
	},
	{
		version: 2,
		name:    "training",
		stmts: []string{
			`CREATE TABLE course (
				id TEXT PRIMARY KEY,
				code TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				kind TEXT NOT NULL,
				hours INTEGER NOT NULL,
				description TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE class (
				id TEXT PRIMARY KEY,
				course_id TEXT NOT NULL,
				site TEXT NOT NULL,
				instructor TEXT NOT NULL DEFAULT '',
				start_date TEXT NOT NULL,
				end_date TEXT NOT NULL,
				capacity INTEGER NOT NULL,
				status TEXT NOT NULL,
				FOREIGN KEY (course_id) REFERENCES course(id)
			)`,
			`CREATE TABLE enrollment (
				id TEXT PRIMARY KEY,
				class_id TEXT NOT NULL,
				firefighter_id TEXT NOT NULL,
				status TEXT NOT NULL,
				grade REAL,
				enrolled_at TEXT NOT NULL,
				UNIQUE (class_id, firefighter_id),
				FOREIGN KEY (class_id) REFERENCES class(id),
				FOREIGN KEY (firefighter_id) REFERENCES firefighter(id)
			)`,
			`CREATE TABLE attendance (
				id TEXT PRIMARY KEY,
				class_id TEXT NOT NULL,
				firefighter_id TEXT NOT NULL,
				date TEXT NOT NULL,
				present INTEGER NOT NULL,
				recorded_by TEXT NOT NULL DEFAULT '',
				UNIQUE (class_id, firefighter_id, date),
				FOREIGN KEY (class_id) REFERENCES class(id)
			)`,
		},
	},
	{
		version: 3,
		name:    "certificates",
		stmts: []string{
			`CREATE TABLE certificate (
				id TEXT PRIMARY KEY,
				number TEXT NOT NULL UNIQUE,
				firefighter_id TEXT NOT NULL,
				course_id TEXT NOT NULL,
				class_id TEXT NOT NULL,
				issued_at TEXT NOT NULL,
				UNIQUE (class_id, firefighter_id),
				FOREIGN KEY (firefighter_id) REFERENCES firefighter(id)
			)`,
			`CREATE TABLE certificate_sequence (
				year INTEGER PRIMARY KEY,
				last INTEGER NOT NULL
			)`,
		},
	},
	{
		version: 4,
		name:    "outbox",
		stmts: []string{
			`CREATE TABLE outbox (
				id TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				dedup_key TEXT NOT NULL UNIQUE,
				payload TEXT NOT NULL,
				status TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				max_attempts INTEGER NOT NULL,
				next_attempt_at TEXT NOT NULL DEFAULT '',
				last_error TEXT NOT NULL DEFAULT '',
				external_id TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				sent_at TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX idx_outbox_status ON outbox(status, next_attempt_at)`,
		},
	},
}

// LatestSchemaVersion is the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for an empty database.
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB applies pending migrations, one transaction per step.
// PRE: db is a valid database connection; path is the database file (":memory:" in tests)
// POST: schema_version holds LatestSchemaVersion; WAL and foreign keys enabled for file databases
// INVARIANT: already-applied steps are never re-run
func MigrateDB(db *sql.DB, path string) error {
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > LatestSchemaVersion() {
		return fmt.Errorf("database schema version %d is newer than this binary (%d)", current, LatestSchemaVersion())
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name, "path", path)
	}
	return nil
}

func apply(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
		return err
	}
	return tx.Commit()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
