package course

import (
	"errors"
	"regexp"
	"strings"
)

// Course kinds. The kind decides which credential date a pass updates.
const (
	KindInitial   = "initial"
	KindRecurrent = "recurrent"
	KindLiveFire  = "live_fire"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 120
	MaxDescriptionLength = 20000
)

var codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,19}$`)

// Domain errors
var (
	ErrInvalidCode = errors.New("course code must be 2-20 upper-case letters, digits or dashes")
	ErrEmptyName   = errors.New("course name cannot be empty")
	ErrInvalidKind = errors.New("course kind must be 'initial', 'recurrent' or 'live_fire'")
	ErrHours       = errors.New("course hours must be positive")
)

// Course is a training curriculum that classes are scheduled from.
type Course struct {
	ID          string
	Code        string
	Name        string
	Kind        string
	Hours       int
	Description string // markdown
}

// Validate checks if the Course has valid data.
// PRE: Course struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (c *Course) Validate() error {
	if !codePattern.MatchString(c.Code) {
		return ErrInvalidCode
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("course name cannot exceed 120 characters")
	}
	if !ValidKind(c.Kind) {
		return ErrInvalidKind
	}
	if c.Hours <= 0 {
		return ErrHours
	}
	if len(c.Description) > MaxDescriptionLength {
		return errors.New("course description is too long")
	}
	return nil
}

// ValidKind reports whether k is a known course kind.
func ValidKind(k string) bool {
	return k == KindInitial || k == KindRecurrent || k == KindLiveFire
}
