package attendance

import (
	"context"

	domain "arff/internal/domain/attendance"
)

// Store persists attendance records.
type Store interface {
	// Upsert writes the record for (class, firefighter, date), replacing any earlier mark.
	Upsert(ctx context.Context, value domain.Record) error
	ListByClass(ctx context.Context, classID string) ([]domain.Record, error)
	ListByClassAndFirefighter(ctx context.Context, classID, firefighterID string) ([]domain.Record, error)
}
