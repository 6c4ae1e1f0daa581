package enrollment

import (
	"context"

	domain "arff/internal/domain/enrollment"
)

// Store persists Enrollment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Enrollment, error)
	GetByClassAndFirefighter(ctx context.Context, classID, firefighterID string) (domain.Enrollment, error)
	Save(ctx context.Context, value domain.Enrollment) error
	ListByClass(ctx context.Context, classID string) ([]domain.Enrollment, error)
	ListByFirefighter(ctx context.Context, firefighterID string) ([]domain.Enrollment, error)
	// CountActive counts enrollments in a class that still hold a seat (not withdrawn).
	CountActive(ctx context.Context, classID string) (int, error)
}
