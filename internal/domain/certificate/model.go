package certificate

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	ErrMissingRefs = errors.New("certificate must reference a firefighter, course and class")
	ErrNoNumber    = errors.New("certificate number is required")
)

// Certificate is issued to a firefighter for passing a class.
type Certificate struct {
	ID            string
	Number        string
	FirefighterID string
	CourseID      string
	ClassID       string
	IssuedAt      time.Time
}

// Validate checks if the Certificate has valid data.
// PRE: Certificate struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (c *Certificate) Validate() error {
	if c.FirefighterID == "" || c.CourseID == "" || c.ClassID == "" {
		return ErrMissingRefs
	}
	if c.Number == "" {
		return ErrNoNumber
	}
	if c.IssuedAt.IsZero() {
		return errors.New("certificate issue date must be set")
	}
	return nil
}

// FormatNumber renders the printed certificate number for the seq-th certificate of year.
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("ARFF-%d-%06d", year, seq)
}
