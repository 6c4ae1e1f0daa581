package credential

import (
	"time"

	"arff/internal/domain/firefighter"
)

// Status summarises how close a credential is to lapsing.
type Status string

// Credential statuses, ordered from best to worst.
const (
	StatusValid       Status = "valid"
	StatusExpiring    Status = "expiring"
	StatusExpired     Status = "expired"
	StatusInvalidData Status = "invalid_data"
)

// StatusAt classifies a single expiry date relative to today.
// An expiry on today's date is still valid for the day.
// PRE: window >= 0
func StatusAt(expiry, today time.Time, window time.Duration) Status {
	day := firefighter.Day(today)
	switch {
	case expiry.Before(day):
		return StatusExpired
	case !expiry.After(day.Add(window)):
		return StatusExpiring
	default:
		return StatusValid
	}
}

// Worst returns the most severe status across general and fire validity.
func (e Expirations) Worst(today time.Time, window time.Duration) Status {
	s := StatusAt(e.General, today, window)
	if e.Fire != nil {
		if fs := StatusAt(*e.Fire, today, window); rank(fs) > rank(s) {
			s = fs
		}
	}
	return s
}

func rank(s Status) int {
	switch s {
	case StatusExpiring:
		return 1
	case StatusExpired:
		return 2
	case StatusInvalidData:
		return 3
	default:
		return 0
	}
}
