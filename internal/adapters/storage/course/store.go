package course

import (
	"context"

	domain "arff/internal/domain/course"
)

// Store persists Course state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Course, error)
	GetByCode(ctx context.Context, code string) (domain.Course, error)
	Save(ctx context.Context, value domain.Course) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Course, error)
}
