package attendance

import (
	"errors"
	"time"
)

// Record marks one firefighter present or absent on one class day.
// At most one record exists per (ClassID, FirefighterID, Date).
type Record struct {
	ID            string
	ClassID       string
	FirefighterID string
	Date          time.Time
	Present       bool
	RecordedBy    string
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: ClassID, FirefighterID and Date must be set
func (r *Record) Validate() error {
	if r.ClassID == "" {
		return errors.New("attendance must be associated with a class")
	}
	if r.FirefighterID == "" {
		return errors.New("attendance must be associated with a firefighter")
	}
	if r.Date.IsZero() {
		return errors.New("attendance date must be set")
	}
	return nil
}

// Percentage returns present days over classDays as 0-100.
// Days without a record count as absent.
// PRE: records belong to one firefighter in one class
func Percentage(records []Record, classDays int) float64 {
	if classDays <= 0 {
		return 0
	}
	present := 0
	seen := make(map[time.Time]bool, len(records))
	for _, r := range records {
		if r.Present && !seen[r.Date] {
			seen[r.Date] = true
			present++
		}
	}
	if present > classDays {
		present = classDays
	}
	return float64(present) * 100 / float64(classDays)
}
