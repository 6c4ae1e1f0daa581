// Package expiryreport buckets credential expiries by month and cross-tabulates them by site.
package expiryreport

import (
	"errors"
	"strings"
	"time"

	"arff/internal/domain/credential"
	"arff/internal/domain/firefighter"
)

// MonthLabels are the bucket labels in calendar order.
var MonthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ValidityKind selects which expiry a matrix counts.
type ValidityKind string

// Validity kinds.
const (
	KindGeneral ValidityKind = "general"
	KindFire    ValidityKind = "fire"
)

// ErrUnknownKind is returned by ParseKind for anything but general or fire.
var ErrUnknownKind = errors.New("validity kind must be 'general' or 'fire'")

// ParseKind parses a validity kind, defaulting to general when s is empty.
func ParseKind(s string) (ValidityKind, error) {
	switch ValidityKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindGeneral:
		return KindGeneral, nil
	case KindFire:
		return KindFire, nil
	}
	return "", ErrUnknownKind
}

// Filter restricts which firefighters are counted. Empty Site and Region match everything.
type Filter struct {
	Year   int
	Site   string
	Region string
}

// Matches reports whether f passes the site and region restriction.
func (flt Filter) Matches(f firefighter.Firefighter) bool {
	if flt.Site != "" && f.Site != flt.Site {
		return false
	}
	if flt.Region != "" && f.Region != flt.Region {
		return false
	}
	return true
}

// Bucket holds the expiry counts of one calendar month.
type Bucket struct {
	Month        string `json:"month"`
	GeneralCount int    `json:"general_count"`
	FireCount    int    `json:"fire_count"`
}

// SkippedRecord names a firefighter excluded because its dates are unusable.
type SkippedRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Site   string `json:"site"`
	Reason string `json:"reason"`
}

// Histogram is the twelve-month aggregation for one year.
type Histogram struct {
	Year    int             `json:"year"`
	Buckets [12]Bucket      `json:"buckets"`
	Skipped []SkippedRecord `json:"skipped,omitempty"`
}

// TotalGeneral sums the general counts across all months.
func (h Histogram) TotalGeneral() int {
	n := 0
	for _, b := range h.Buckets {
		n += b.GeneralCount
	}
	return n
}

// TotalFire sums the fire counts across all months.
func (h Histogram) TotalFire() int {
	n := 0
	for _, b := range h.Buckets {
		n += b.FireCount
	}
	return n
}

// Count returns the per-month counts for one validity kind.
func (h Histogram) Count(kind ValidityKind) [12]int {
	var out [12]int
	for i, b := range h.Buckets {
		if kind == KindFire {
			out[i] = b.FireCount
		} else {
			out[i] = b.GeneralCount
		}
	}
	return out
}

// AggregateByMonth buckets the filtered records by the month their credentials expire in filter.Year.
// PRE: records is a read-only snapshot
// POST: Buckets are in calendar order; each record adds at most one general and one fire increment
// INVARIANT: records whose expiry cannot be computed land in Skipped and in no bucket
func AggregateByMonth(records []firefighter.Firefighter, filter Filter) Histogram {
	h := Histogram{Year: filter.Year}
	for i := range h.Buckets {
		h.Buckets[i].Month = MonthLabels[i]
	}

	for _, f := range records {
		if !filter.Matches(f) {
			continue
		}
		exp, err := credential.Calculate(f)
		if err != nil {
			h.Skipped = append(h.Skipped, SkippedRecord{ID: f.ID, Name: f.Name, Site: f.Site, Reason: reason(err)})
			continue
		}
		if exp.General.Year() == filter.Year {
			h.Buckets[monthIndex(exp.General.Month())].GeneralCount++
		}
		if exp.Fire != nil && exp.Fire.Year() == filter.Year {
			h.Buckets[monthIndex(exp.Fire.Month())].FireCount++
		}
	}
	return h
}

func reason(err error) string {
	var de *credential.DateError
	if errors.As(err, &de) {
		return de.Field + ": " + de.Err.Error()
	}
	return err.Error()
}

// monthIndex converts a time.Month to a zero-based bucket index.
func monthIndex(m time.Month) int { return int(m) - 1 }
