package credential

import "arff/internal/domain/firefighter"

// Policy declares the validity periods carried by a classification tier.
type Policy struct {
	GeneralYears int
	// FireYears is zero for tiers without a live-fire credential.
	FireYears int
}

// LiveFire reports whether the tier carries a separate fire validity.
func (p Policy) LiveFire() bool {
	return p.FireYears > 0
}

// DefaultPolicy applies to tiers missing from Policies.
var DefaultPolicy = Policy{GeneralYears: 2}

// Policies maps each tier to its validity periods.
var Policies = map[firefighter.Tier]Policy{
	firefighter.TierI:   {GeneralYears: 4},
	firefighter.TierII:  {GeneralYears: 4},
	firefighter.TierIII: {GeneralYears: 2},
	firefighter.TierIV:  {GeneralYears: 2, FireYears: 2},
}

// PolicyFor returns the policy for tier, falling back to DefaultPolicy.
// POST: never fails; unknown tiers get the two-year default with no fire validity
func PolicyFor(tier firefighter.Tier) Policy {
	if p, ok := Policies[tier]; ok {
		return p
	}
	return DefaultPolicy
}
