package firefighter

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the on-disk and wire format for calendar dates.
const DateLayout = "2006-01-02"

// Max length constants for user-editable fields.
const (
	MaxNameLength = 120
	MaxSiteLength = 60
)

// Tier is the ordinal classification of an aerodrome firefighter.
type Tier string

// Classification tiers, lowest to highest. TierIV is live-fire capable.
const (
	TierI   Tier = "I"
	TierII  Tier = "II"
	TierIII Tier = "III"
	TierIV  Tier = "IV"
)

// Tiers lists every known tier in ordinal order.
var Tiers = []Tier{TierI, TierII, TierIII, TierIV}

// Domain errors
var (
	ErrEmptyName            = errors.New("firefighter name cannot be empty")
	ErrNameTooLong          = errors.New("firefighter name cannot exceed 120 characters")
	ErrEmptySite            = errors.New("firefighter site cannot be empty")
	ErrUnknownTier          = errors.New("tier must be one of I, II, III, IV")
	ErrNoGraduationDate     = errors.New("graduation date is required")
	ErrNoUpdateDate         = errors.New("last update date is required unless the firefighter was never updated")
	ErrAwayWindowReversed   = errors.New("away end date cannot be before away start date")
	ErrUpdateBeforeGraduate = errors.New("last update date cannot be before graduation date")
)

// Firefighter holds state for a credentialed individual.
// A zero time.Time means the date is absent.
type Firefighter struct {
	ID                   string
	Name                 string
	TaxID                string
	Email                string
	Site                 string
	Region               string
	Tier                 Tier
	GraduationDate       time.Time
	LastUpdateDate       time.Time
	IsNotUpdated         bool
	LastFireExerciseDate time.Time
	IsAway               bool
	AwayStartDate        time.Time
	AwayEndDate          time.Time
}

// Validate checks if the Firefighter has valid data.
// PRE: Firefighter struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: GraduationDate is always set; LastUpdateDate is set unless IsNotUpdated
func (f *Firefighter) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if len(f.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(f.Site) == "" {
		return ErrEmptySite
	}
	if len(f.Site) > MaxSiteLength {
		return errors.New("firefighter site cannot exceed 60 characters")
	}
	if !f.Tier.Known() {
		return ErrUnknownTier
	}
	if f.GraduationDate.IsZero() {
		return ErrNoGraduationDate
	}
	if !f.IsNotUpdated {
		if f.LastUpdateDate.IsZero() {
			return ErrNoUpdateDate
		}
		if f.LastUpdateDate.Before(f.GraduationDate) {
			return ErrUpdateBeforeGraduate
		}
	}
	if f.Email != "" && !strings.Contains(f.Email, "@") {
		return errors.New("firefighter email must be valid")
	}
	if !f.AwayStartDate.IsZero() && !f.AwayEndDate.IsZero() && f.AwayEndDate.Before(f.AwayStartDate) {
		return ErrAwayWindowReversed
	}
	return nil
}

// Known reports whether t is one of the four classification tiers.
func (t Tier) Known() bool {
	for _, k := range Tiers {
		if t == k {
			return true
		}
	}
	return false
}

// IsAwayOn reports whether the firefighter is on leave on the given day.
// With IsAway set and no window, the leave is open-ended.
// PRE: day is a calendar date
// POST: Returns true when day falls inside the (inclusive) away window
func (f *Firefighter) IsAwayOn(day time.Time) bool {
	if !f.IsAway {
		return false
	}
	d := Day(day)
	if !f.AwayStartDate.IsZero() && d.Before(f.AwayStartDate) {
		return false
	}
	if !f.AwayEndDate.IsZero() && d.After(f.AwayEndDate) {
		return false
	}
	return true
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Snapshot is an immutable view of the roster at one revision.
// Callers must not modify Records.
type Snapshot struct {
	Revision int64
	Records  []Firefighter
}
