package firefighter

import (
	"context"

	domain "arff/internal/domain/firefighter"
)

// Store persists Firefighter state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Firefighter, error)
	GetByTaxID(ctx context.Context, taxID string) (domain.Firefighter, error)
	Save(ctx context.Context, value domain.Firefighter) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Firefighter, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	// Snapshot returns every firefighter together with the roster revision they were read at.
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	// Revision returns the current roster revision without reading any records.
	Revision(ctx context.Context) (int64, error)
	Sites(ctx context.Context) ([]string, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Site   string
	Region string
	Tier   string
	Search string
	Sort   string
	Dir    string
}
