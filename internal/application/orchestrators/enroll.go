package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"arff/internal/domain/class"
	"arff/internal/domain/enrollment"
	"arff/internal/domain/firefighter"
)

// FirefighterReader loads a single firefighter.
type FirefighterReader interface {
	GetByID(ctx context.Context, id string) (firefighter.Firefighter, error)
}

// ClassReader loads a single class.
type ClassReader interface {
	GetByID(ctx context.Context, id string) (class.Class, error)
}

// EnrollmentStore defines the enrollment persistence the training orchestrators need.
type EnrollmentStore interface {
	GetByID(ctx context.Context, id string) (enrollment.Enrollment, error)
	GetByClassAndFirefighter(ctx context.Context, classID, firefighterID string) (enrollment.Enrollment, error)
	Save(ctx context.Context, e enrollment.Enrollment) error
	ListByClass(ctx context.Context, classID string) ([]enrollment.Enrollment, error)
	CountActive(ctx context.Context, classID string) (int, error)
}

// EnrollInput carries input for the enroll orchestrator.
type EnrollInput struct {
	ClassID       string
	FirefighterID string
}

// EnrollDeps holds dependencies for Enroll.
type EnrollDeps struct {
	Classes      ClassReader
	Firefighters FirefighterReader
	Enrollments  EnrollmentStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteEnroll seats a firefighter in a class.
// PRE: class is open; firefighter is not on leave on any class day
// POST: Enrollment with Status=enrolled; a withdrawn enrollment is reactivated in place
// INVARIANT: active enrollments never exceed class capacity
func ExecuteEnroll(ctx context.Context, input EnrollInput, deps EnrollDeps) (enrollment.Enrollment, error) {
	c, err := deps.Classes.GetByID(ctx, input.ClassID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	if c.IsClosed() {
		return enrollment.Enrollment{}, enrollment.ErrClassClosed
	}
	f, err := deps.Firefighters.GetByID(ctx, input.FirefighterID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	for _, day := range c.Days() {
		if f.IsAwayOn(day) {
			return enrollment.Enrollment{}, enrollment.ErrFirefighterOut
		}
	}

	e, err := deps.Enrollments.GetByClassAndFirefighter(ctx, c.ID, f.ID)
	switch {
	case err == nil && e.Status != enrollment.StatusWithdrawn:
		return enrollment.Enrollment{}, enrollment.ErrDuplicate
	case err == nil:
		e.Status = enrollment.StatusEnrolled
		e.Grade = nil
		e.EnrolledAt = deps.Now()
	case errors.Is(err, sql.ErrNoRows):
		e = enrollment.Enrollment{
			ID:            deps.GenerateID(),
			ClassID:       c.ID,
			FirefighterID: f.ID,
			Status:        enrollment.StatusEnrolled,
			EnrolledAt:    deps.Now(),
		}
	default:
		return enrollment.Enrollment{}, err
	}

	active, err := deps.Enrollments.CountActive(ctx, c.ID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	if active >= c.Capacity {
		return enrollment.Enrollment{}, enrollment.ErrClassFull
	}
	if err := e.Validate(); err != nil {
		return enrollment.Enrollment{}, err
	}
	if err := deps.Enrollments.Save(ctx, e); err != nil {
		return enrollment.Enrollment{}, err
	}
	slog.Info("firefighter_enrolled", "enrollment_id", e.ID, "class_id", c.ID, "firefighter_id", f.ID)
	return e, nil
}

// ExecuteWithdraw frees an enrolled firefighter's seat.
// PRE: enrollment is active and its class is open
// POST: Status=withdrawn
func ExecuteWithdraw(ctx context.Context, enrollmentID string, classes ClassReader, enrollments EnrollmentStore) (enrollment.Enrollment, error) {
	e, err := enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	c, err := classes.GetByID(ctx, e.ClassID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	if c.IsClosed() {
		return enrollment.Enrollment{}, enrollment.ErrClassClosed
	}
	if err := e.Withdraw(); err != nil {
		return enrollment.Enrollment{}, err
	}
	if err := enrollments.Save(ctx, e); err != nil {
		return enrollment.Enrollment{}, err
	}
	slog.Info("firefighter_withdrawn", "enrollment_id", e.ID, "class_id", e.ClassID)
	return e, nil
}

// --- Record Grade ---

// RecordGradeInput carries input for the record grade orchestrator.
type RecordGradeInput struct {
	EnrollmentID string
	Grade        float64
}

// ExecuteRecordGrade sets the final grade on an active enrollment.
// PRE: class is open; 0 <= Grade <= 100
// POST: Grade stored; pass/fail is decided when the class completes
func ExecuteRecordGrade(ctx context.Context, input RecordGradeInput, classes ClassReader, enrollments EnrollmentStore) (enrollment.Enrollment, error) {
	e, err := enrollments.GetByID(ctx, input.EnrollmentID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	c, err := classes.GetByID(ctx, e.ClassID)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	if c.IsClosed() {
		return enrollment.Enrollment{}, class.ErrAlreadyClosed
	}
	if err := e.SetGrade(input.Grade); err != nil {
		return enrollment.Enrollment{}, err
	}
	if err := enrollments.Save(ctx, e); err != nil {
		return enrollment.Enrollment{}, err
	}
	return e, nil
}
