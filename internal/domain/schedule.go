package domain

import "time"

// Variant selects one of the two content generation modes.
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantEnhanced Variant = "enhanced"
)

var epoch = time.Unix(0, 0).UTC()

// Interval returns the configured cadence as a duration.
func (p Profile) Interval() time.Duration {
	return time.Duration(p.IntervalHours) * time.Hour
}

// NextDueAt returns the earliest instant the profile becomes due.
// A profile that was never sent to is due since the unix epoch.
func (p Profile) NextDueAt() time.Time {
	last := epoch
	if p.LastSentAt != nil {
		last = *p.LastSentAt
	}
	return last.Add(p.Interval())
}

// DueAt reports whether an eligible profile is due at now.
// Elapsed wall-clock time is compared; the boundary itself counts as due.
func (p Profile) DueAt(now time.Time) bool {
	if !p.Eligible() {
		return false
	}
	return !now.Before(p.NextDueAt())
}

// Due returns the subset of profiles that are due at now, in input order.
func Due(profiles []Profile, now time.Time) []Profile {
	var res []Profile
	for _, p := range profiles {
		if p.DueAt(now) {
			res = append(res, p)
		}
	}
	return res
}
