package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// SQLDB is what every store needs from a database handle.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQuery applies when NewTimedDB is given no threshold.
const DefaultSlowQuery = 50 * time.Millisecond

// QueryObserver is told about every call made through a TimedDB.
// *metrics.Manager implements it.
type QueryObserver interface {
	ObserveQuery(op string, d time.Duration, err error)
}

// TimedDB is an SQLDB that measures each call, warns on slow ones
// and forwards the timing to an optional observer.
type TimedDB struct {
	db        *sql.DB
	observer  QueryObserver
	threshold time.Duration
}

// NewTimedDB wraps db. observer may be nil.
// POST: a threshold <= 0 becomes DefaultSlowQuery
func NewTimedDB(db *sql.DB, observer QueryObserver, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, observer: observer, threshold: threshold}
}

// track starts the clock for op; call the returned func with the call's error.
func (t *TimedDB) track(op string) func(error) {
	start := time.Now()
	return func(err error) {
		elapsed := time.Since(start)
		if elapsed >= t.threshold {
			slog.Warn("slow_query", "op", op, "duration_ms", elapsed.Milliseconds(), "failed", err != nil)
		}
		if t.observer != nil {
			t.observer.ObserveQuery(op, elapsed, err)
		}
	}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	done := t.track("exec")
	res, err := t.db.ExecContext(ctx, query, args...)
	done(err)
	return res, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	done := t.track("query")
	rows, err := t.db.QueryContext(ctx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext reports a nil error: a row's failure only surfaces on Scan.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	done := t.track("query_row")
	row := t.db.QueryRowContext(ctx, query, args...)
	done(nil)
	return row
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	done := t.track("begin_tx")
	tx, err := t.db.BeginTx(ctx, opts)
	done(err)
	return tx, err
}

// PingContext is used by the health check and is not timed.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}
