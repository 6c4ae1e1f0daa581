// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"arff/internal/adapters/storage"
)

// Open returns a fully migrated in-memory database pinned to one connection.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Exec runs fixture statements, failing the test on the first error.
func Exec(t testing.TB, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("fixture %q: %v", s, err)
		}
	}
}

// SeedClass inserts course c1 (recurrent), class k1 at SBGR and firefighters f1..f3.
func SeedClass(t testing.TB, db *sql.DB) {
	t.Helper()
	Exec(t, db,
		`INSERT INTO course (id, code, name, kind, hours) VALUES ('c1', 'REC-01', 'Recurrent', 'recurrent', 16)`,
		`INSERT INTO class (id, course_id, site, start_date, end_date, capacity, status) VALUES ('k1', 'c1', 'SBGR', '2024-03-04', '2024-03-06', 2, 'scheduled')`,
		`INSERT INTO firefighter (id, name, site, tier) VALUES ('f1', 'Ana', 'SBGR', 'IV'), ('f2', 'Bruno', 'SBGR', 'I'), ('f3', 'Carla', 'SBGR', 'III')`,
	)
}
