package certificate

import (
	"context"

	domain "arff/internal/domain/certificate"
)

// Store persists issued certificates.
type Store interface {
	// Issue assigns the next number for the issue year and persists the certificate.
	Issue(ctx context.Context, value domain.Certificate) (domain.Certificate, error)
	ListByFirefighter(ctx context.Context, firefighterID string) ([]domain.Certificate, error)
	ListByClass(ctx context.Context, classID string) ([]domain.Certificate, error)
}
