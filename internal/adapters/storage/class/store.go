package class

import (
	"context"

	domain "arff/internal/domain/class"
)

// Store persists Class state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Class, error)
	Save(ctx context.Context, value domain.Class) error
	List(ctx context.Context, filter ListFilter) ([]domain.Class, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// Year matches classes starting in that year; zero means any.
type ListFilter struct {
	Site     string
	Status   string
	CourseID string
	Year     int
}
