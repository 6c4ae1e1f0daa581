// Package credential computes certification expiry dates for firefighters.
package credential

import (
	"errors"
	"fmt"
	"time"

	"arff/internal/domain/firefighter"
)

// Domain errors
var (
	ErrMissingGraduationDate = errors.New("graduation date is missing")
	ErrMissingUpdateDate     = errors.New("last update date is missing")
)

// Field names reported in DateError.
const (
	FieldGraduationDate = "graduation_date"
	FieldLastUpdateDate = "last_update_date"
)

// DateError reports a base date that cannot be used for an expiry calculation.
type DateError struct {
	FirefighterID string
	Field         string
	Err           error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("firefighter %s: %s: %v", e.FirefighterID, e.Field, e.Err)
}

func (e *DateError) Unwrap() error { return e.Err }

// Expirations holds the computed expiry dates of one firefighter.
type Expirations struct {
	General time.Time
	// Fire is nil for tiers without live-fire validity.
	Fire *time.Time
}

// Calculate computes the general and fire expiry dates for f.
// PRE: none; f is passed by value and never mutated
// POST: Returns Expirations, or a *DateError when a required base date is absent
// INVARIANT: when IsNotUpdated, only GraduationDate contributes to either expiry
func Calculate(f firefighter.Firefighter) (Expirations, error) {
	if f.GraduationDate.IsZero() {
		return Expirations{}, &DateError{FirefighterID: f.ID, Field: FieldGraduationDate, Err: ErrMissingGraduationDate}
	}

	policy := PolicyFor(f.Tier)

	base := f.LastUpdateDate
	if f.IsNotUpdated {
		base = f.GraduationDate
	}
	if base.IsZero() {
		return Expirations{}, &DateError{FirefighterID: f.ID, Field: FieldLastUpdateDate, Err: ErrMissingUpdateDate}
	}

	exp := Expirations{General: AddYears(base, policy.GeneralYears)}

	if policy.LiveFire() {
		fireBase := f.GraduationDate
		if !f.IsNotUpdated && !f.LastFireExerciseDate.IsZero() {
			fireBase = f.LastFireExerciseDate
		}
		fire := AddYears(fireBase, policy.FireYears)
		exp.Fire = &fire
	}
	return exp, nil
}

// AddYears shifts t by n calendar years keeping month and day.
// Feb 29 lands on Feb 28 when the target year is not a leap year.
// POST: result month always equals t's month
func AddYears(t time.Time, n int) time.Time {
	d := firefighter.Day(t)
	y, m, day := d.Year()+n, d.Month(), d.Day()
	if m == time.February && day == 29 && !isLeap(y) {
		day = 28
	}
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
