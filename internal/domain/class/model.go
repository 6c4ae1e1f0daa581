package class

import (
	"errors"
	"strings"
	"time"
)

// Class lifecycle.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// MaxCapacity bounds a single offering.
const MaxCapacity = 60

// Domain errors
var (
	ErrNoCourse         = errors.New("class must reference a course")
	ErrNoSite           = errors.New("class site cannot be empty")
	ErrNoDates          = errors.New("class start and end dates are required")
	ErrDatesReversed    = errors.New("class end date cannot be before start date")
	ErrCapacity         = errors.New("class capacity must be between 1 and 60")
	ErrInvalidStatus    = errors.New("invalid class status")
	ErrAlreadyClosed    = errors.New("class is already completed or cancelled")
	ErrCompleteTooEarly = errors.New("class cannot be completed before its end date")
)

// Class is one scheduled offering of a course at a site.
type Class struct {
	ID         string
	CourseID   string
	Site       string
	Instructor string
	StartDate  time.Time
	EndDate    time.Time
	Capacity   int
	Status     string
}

// Validate checks if the Class has valid data.
// PRE: Class struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: EndDate >= StartDate
func (c *Class) Validate() error {
	if c.CourseID == "" {
		return ErrNoCourse
	}
	if strings.TrimSpace(c.Site) == "" {
		return ErrNoSite
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return ErrNoDates
	}
	if c.EndDate.Before(c.StartDate) {
		return ErrDatesReversed
	}
	if c.Capacity < 1 || c.Capacity > MaxCapacity {
		return ErrCapacity
	}
	switch c.Status {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// IsClosed reports whether the class accepts no further changes.
func (c *Class) IsClosed() bool {
	return c.Status == StatusCompleted || c.Status == StatusCancelled
}

// Days returns every calendar day the class runs, inclusive.
func (c *Class) Days() []time.Time {
	var out []time.Time
	for d := c.StartDate; !d.After(c.EndDate); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// Covers reports whether day falls within the class dates.
func (c *Class) Covers(day time.Time) bool {
	return !day.Before(c.StartDate) && !day.After(c.EndDate)
}

// Complete closes the class.
// PRE: class is open and today is on or after EndDate
// POST: Status is completed
func (c *Class) Complete(today time.Time) error {
	if c.IsClosed() {
		return ErrAlreadyClosed
	}
	if today.Before(c.EndDate) {
		return ErrCompleteTooEarly
	}
	c.Status = StatusCompleted
	return nil
}

// Cancel closes the class without issuing anything.
// PRE: class is open
func (c *Class) Cancel() error {
	if c.IsClosed() {
		return ErrAlreadyClosed
	}
	c.Status = StatusCancelled
	return nil
}
