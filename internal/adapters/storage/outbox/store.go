package outbox

import (
	"context"
	"time"

	domain "arff/internal/domain/outbox"
)

// Store persists queued reminder emails.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Enqueue inserts e unless an entry with its dedup key is already queued.
	// POST: reports whether a row was inserted
	Enqueue(ctx context.Context, e domain.Entry) (bool, error)

	// Save inserts e, or overwrites the delivery state of the entry with its id.
	Save(ctx context.Context, e domain.Entry) error

	// ListDue returns up to limit pending or retrying entries due at now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)

	// ListByStatus returns entries in status, newest first.
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error)
}
