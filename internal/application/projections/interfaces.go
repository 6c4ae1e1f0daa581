package projections

import (
	"context"

	classStore "arff/internal/adapters/storage/class"
	firefighterStore "arff/internal/adapters/storage/firefighter"
	"arff/internal/domain/attendance"
	"arff/internal/domain/certificate"
	"arff/internal/domain/class"
	"arff/internal/domain/course"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
)

// RosterSnapshotter reads the whole roster at one revision.
// Revision is the cheap check used before deciding whether Snapshot is needed.
type RosterSnapshotter interface {
	Snapshot(ctx context.Context) (firefighter.Snapshot, error)
	Revision(ctx context.Context) (int64, error)
}

// FirefighterLister pages through the roster.
type FirefighterLister interface {
	List(ctx context.Context, filter firefighterStore.ListFilter) ([]firefighter.Firefighter, error)
	Count(ctx context.Context, filter firefighterStore.ListFilter) (int, error)
}

// FirefighterReader loads one firefighter.
type FirefighterReader interface {
	GetByID(ctx context.Context, id string) (firefighter.Firefighter, error)
}

// ClassLister interface for class queries.
type ClassLister interface {
	GetByID(ctx context.Context, id string) (class.Class, error)
	List(ctx context.Context, filter classStore.ListFilter) ([]class.Class, error)
}

// CourseReader interface for course queries.
type CourseReader interface {
	GetByID(ctx context.Context, id string) (course.Course, error)
}

// EnrollmentReader interface for enrollment queries.
type EnrollmentReader interface {
	ListByClass(ctx context.Context, classID string) ([]enrollment.Enrollment, error)
	ListByFirefighter(ctx context.Context, firefighterID string) ([]enrollment.Enrollment, error)
}

// AttendanceReader interface for attendance queries.
type AttendanceReader interface {
	ListByClass(ctx context.Context, classID string) ([]attendance.Record, error)
}

// CertificateReader interface for certificate queries.
type CertificateReader interface {
	ListByFirefighter(ctx context.Context, firefighterID string) ([]certificate.Certificate, error)
}
