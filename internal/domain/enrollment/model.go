package enrollment

import (
	"errors"
	"time"
)

// Enrollment lifecycle.
const (
	StatusEnrolled  = "enrolled"
	StatusPassed    = "passed"
	StatusFailed    = "failed"
	StatusWithdrawn = "withdrawn"
)

// Domain errors
var (
	ErrMissingRefs    = errors.New("enrollment must reference a class and a firefighter")
	ErrInvalidStatus  = errors.New("invalid enrollment status")
	ErrGradeRange     = errors.New("grade must be between 0 and 100")
	ErrNotEnrolled    = errors.New("enrollment is not active")
	ErrDuplicate      = errors.New("firefighter is already enrolled in this class")
	ErrClassFull      = errors.New("class is full")
	ErrClassClosed    = errors.New("class is not open for enrollment")
	ErrFirefighterOut = errors.New("firefighter is on leave during the class")
)

// Enrollment links a firefighter to a class and carries the final grade.
type Enrollment struct {
	ID            string
	ClassID       string
	FirefighterID string
	Status        string
	Grade         *float64
	EnrolledAt    time.Time
}

// Validate checks if the Enrollment has valid data.
// PRE: Enrollment struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (e *Enrollment) Validate() error {
	if e.ClassID == "" || e.FirefighterID == "" {
		return ErrMissingRefs
	}
	switch e.Status {
	case StatusEnrolled, StatusPassed, StatusFailed, StatusWithdrawn:
	default:
		return ErrInvalidStatus
	}
	if e.Grade != nil && (*e.Grade < 0 || *e.Grade > 100) {
		return ErrGradeRange
	}
	return nil
}

// SetGrade records a grade on an active enrollment.
// PRE: Status is enrolled
// POST: Grade set; Status unchanged until the class is completed
func (e *Enrollment) SetGrade(g float64) error {
	if e.Status != StatusEnrolled {
		return ErrNotEnrolled
	}
	if g < 0 || g > 100 {
		return ErrGradeRange
	}
	e.Grade = &g
	return nil
}

// Withdraw removes the firefighter from the class.
// PRE: Status is enrolled
func (e *Enrollment) Withdraw() error {
	if e.Status != StatusEnrolled {
		return ErrNotEnrolled
	}
	e.Status = StatusWithdrawn
	return nil
}

// Decide settles the outcome once the class completes.
// A missing grade is a fail.
// PRE: Status is enrolled
// POST: Status is passed or failed
func (e *Enrollment) Decide(passMark, attendancePct, minAttendancePct float64) (bool, error) {
	if e.Status != StatusEnrolled {
		return false, ErrNotEnrolled
	}
	passed := e.Grade != nil && *e.Grade >= passMark && attendancePct >= minAttendancePct
	if passed {
		e.Status = StatusPassed
	} else {
		e.Status = StatusFailed
	}
	return passed, nil
}
