package outbox

import (
	"errors"
	"time"
)

// Entry lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// KindEmail is the only delivery channel for now.
const KindEmail = "email"

// DefaultMaxAttempts bounds delivery retries when an entry does not set its own.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyKind     = errors.New("outbox kind is required")
	ErrEmptyPayload  = errors.New("outbox payload is required")
	ErrEmptyDedupKey = errors.New("outbox dedup key is required")
	ErrNotRetryable  = errors.New("outbox entry is not retryable")
	ErrAlreadySent   = errors.New("outbox entry was already sent")
)

// Entry is a queued side effect awaiting delivery.
// DedupKey is unique: enqueueing an entry whose key already exists is a no-op.
type Entry struct {
	ID            string
	Kind          string
	DedupKey      string
	Payload       string // JSON
	Status        string
	Attempts      int
	MaxAttempts   int
	NextAttemptAt time.Time
	LastError     string
	ExternalID    string
	CreatedAt     time.Time
	SentAt        time.Time
}

// Validate checks that the Entry has valid data and fills defaults.
// PRE: Entry struct is populated
// POST: MaxAttempts and Status are defaulted when unset
func (e *Entry) Validate() error {
	if e.Kind == "" {
		return ErrEmptyKind
	}
	if e.DedupKey == "" {
		return ErrEmptyDedupKey
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	return nil
}

// Due reports whether the entry should be attempted at now.
func (e *Entry) Due(now time.Time) bool {
	if e.Status != StatusPending && e.Status != StatusRetrying {
		return false
	}
	return !now.Before(e.NextAttemptAt)
}

// RecordSuccess marks the entry delivered.
// POST: Status is sent, LastError cleared
func (e *Entry) RecordSuccess(externalID string, now time.Time) {
	e.Attempts++
	e.Status = StatusSent
	e.ExternalID = externalID
	e.LastError = ""
	e.SentAt = now
}

// RecordFailure counts a failed attempt and schedules the next one with exponential backoff.
// POST: Status is failed once Attempts reaches MaxAttempts, retrying otherwise
func (e *Entry) RecordFailure(err error, now time.Time, base, ceiling time.Duration) {
	e.Attempts++
	e.LastError = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
		return
	}
	e.Status = StatusRetrying
	e.NextAttemptAt = now.Add(Backoff(e.Attempts, base, ceiling))
}

// Requeue resets a failed entry so the processor picks it up again.
// PRE: Status is failed
func (e *Entry) Requeue(now time.Time) error {
	if e.Status != StatusFailed {
		return ErrNotRetryable
	}
	e.Status = StatusPending
	e.Attempts = 0
	e.NextAttemptAt = now
	return nil
}

// Abandon stops any further delivery attempts.
// POST: a sent entry is left untouched and ErrAlreadySent returned
func (e *Entry) Abandon() error {
	if e.Status == StatusSent {
		return ErrAlreadySent
	}
	e.Status = StatusAbandoned
	return nil
}

// Backoff returns base * 2^(attempts-1), capped at ceiling.
func Backoff(attempts int, base, ceiling time.Duration) time.Duration {
	if attempts < 1 {
		return base
	}
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return d
}
