package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"arff/internal/domain/attendance"
	"arff/internal/domain/certificate"
	"arff/internal/domain/class"
	"arff/internal/domain/course"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
	"arff/pkg/metrics"
)

// CertificateStore defines the certificate persistence the orchestrators need.
type CertificateStore interface {
	Issue(ctx context.Context, c certificate.Certificate) (certificate.Certificate, error)
	ListByClass(ctx context.Context, classID string) ([]certificate.Certificate, error)
}

// FirefighterWriter loads and saves a single firefighter.
type FirefighterWriter interface {
	GetByID(ctx context.Context, id string) (firefighter.Firefighter, error)
	Save(ctx context.Context, f firefighter.Firefighter) error
}

// CompleteClassInput carries input for the complete class orchestrator.
type CompleteClassInput struct {
	ClassID     string
	CompletedBy string
}

// CompleteClassDeps holds dependencies for CompleteClass.
type CompleteClassDeps struct {
	Classes          ClassStore
	Courses          CourseStore
	Enrollments      EnrollmentStore
	Attendance       AttendanceStore
	Certificates     CertificateStore
	Firefighters     FirefighterWriter
	GenerateID       func() string
	Now              func() time.Time
	PassMark         float64
	MinAttendancePct float64
	Metrics          *metrics.Manager
}

// CompleteClassResult summarises the outcome per enrollee.
type CompleteClassResult struct {
	Class        class.Class               `json:"class"`
	Passed       []string                  `json:"passed"`
	Failed       []string                  `json:"failed"`
	Certificates []certificate.Certificate `json:"certificates"`
}

// ExecuteCompleteClass closes a class, decides every active enrollment and credits passes.
// PRE: class is open and has ended
// POST: Each enrolled firefighter is passed or failed; passes get a certificate and
// the credential date matching the course kind; the class is completed
// INVARIANT: Re-running after a partial failure never issues a second certificate
func ExecuteCompleteClass(ctx context.Context, input CompleteClassInput, deps CompleteClassDeps) (CompleteClassResult, error) {
	c, err := deps.Classes.GetByID(ctx, input.ClassID)
	if err != nil {
		return CompleteClassResult{}, err
	}
	now := deps.Now()
	if c.IsClosed() {
		return CompleteClassResult{}, class.ErrAlreadyClosed
	}
	if firefighter.Day(now).Before(c.EndDate) {
		return CompleteClassResult{}, class.ErrCompleteTooEarly
	}
	crs, err := deps.Courses.GetByID(ctx, c.CourseID)
	if err != nil {
		return CompleteClassResult{}, err
	}

	issued, err := deps.Certificates.ListByClass(ctx, c.ID)
	if err != nil {
		return CompleteClassResult{}, err
	}
	hasCertificate := make(map[string]bool, len(issued))
	for _, cert := range issued {
		hasCertificate[cert.FirefighterID] = true
	}

	enrolled, err := deps.Enrollments.ListByClass(ctx, c.ID)
	if err != nil {
		return CompleteClassResult{}, err
	}
	days := len(c.Days())
	result := CompleteClassResult{Passed: []string{}, Failed: []string{}, Certificates: []certificate.Certificate{}}

	for _, e := range enrolled {
		if e.Status != enrollment.StatusEnrolled {
			continue
		}
		records, err := deps.Attendance.ListByClassAndFirefighter(ctx, c.ID, e.FirefighterID)
		if err != nil {
			return result, err
		}
		pct := attendance.Percentage(records, days)
		passed, err := e.Decide(deps.PassMark, pct, deps.MinAttendancePct)
		if err != nil {
			return result, err
		}

		if passed {
			if !hasCertificate[e.FirefighterID] {
				cert, err := deps.Certificates.Issue(ctx, certificate.Certificate{
					ID:            deps.GenerateID(),
					FirefighterID: e.FirefighterID,
					CourseID:      crs.ID,
					ClassID:       c.ID,
					IssuedAt:      now,
				})
				if err != nil {
					return result, fmt.Errorf("issue certificate for %s: %w", e.FirefighterID, err)
				}
				result.Certificates = append(result.Certificates, cert)
				deps.Metrics.RecordCertificate()
			}
			if err := creditFirefighter(ctx, deps.Firefighters, e.FirefighterID, crs.Kind, c.EndDate); err != nil {
				return result, err
			}
			result.Passed = append(result.Passed, e.FirefighterID)
		} else {
			result.Failed = append(result.Failed, e.FirefighterID)
		}

		if err := deps.Enrollments.Save(ctx, e); err != nil {
			return result, err
		}
		slog.Info("enrollment_decided", "class_id", c.ID, "firefighter_id", e.FirefighterID, "passed", passed, "attendance_pct", pct)
	}

	if err := c.Complete(now); err != nil {
		return result, err
	}
	if err := deps.Classes.Save(ctx, c); err != nil {
		return result, err
	}
	result.Class = c
	slog.Info("class_completed", "class_id", c.ID, "by", input.CompletedBy, "passed", len(result.Passed), "failed", len(result.Failed))
	return result, nil
}

// creditFirefighter moves the credential date the course kind renews. Dates never move backwards.
func creditFirefighter(ctx context.Context, store FirefighterWriter, id, kind string, end time.Time) error {
	f, err := store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch kind {
	case course.KindInitial:
		if f.GraduationDate.IsZero() || end.After(f.GraduationDate) {
			f.GraduationDate = end
			f.IsNotUpdated = true
		}
	case course.KindRecurrent:
		if f.IsNotUpdated || end.After(f.LastUpdateDate) {
			f.LastUpdateDate = end
			f.IsNotUpdated = false
		}
	case course.KindLiveFire:
		if end.After(f.LastFireExerciseDate) {
			f.LastFireExerciseDate = end
		}
	default:
		return fmt.Errorf("unknown course kind %q", kind)
	}
	return store.Save(ctx, f)
}
