/*
Package vacation computes vacation entitlement and balances.

PURPOSE:
  Answers the two questions the rest of the system asks about vacation:
  how many days a person earns per year (tenure tiers over hire date),
  and how many they have left (two balance sources behind one interface,
  plus the FIFO bucket ledger that feeds the richer one).

KEY CONCEPTS:
  - Entitlement: completed years of service as of December 31, resolved
    against ordered tenure tiers. Highest applicable tier wins, never
    interpolated.
  - Source: ClientComputed derives everything from the absence list and
    a carryover approximation; ServerLedger adapts a precomputed FIFO
    bucket ledger. Both present the same Balance shape.
  - Buckets: one grant per calendar year, expiring after a fixed window.
    Consumption debits the oldest non-expired bucket first.

SEE ALSO:
  - calc.go: the Balance shape and both sources
  - fifo.go: building the bucket ledger from absences
*/
package vacation

import (
	"sort"

	"github.com/lllhub/leave-engine/leave"
)

// =============================================================================
// TENURE TIERS
// =============================================================================

// EntitlementRule grants Days per year once MinYears of service are
// completed.
type EntitlementRule struct {
	MinYears int
	Days     int
}

// DefaultEntitlementRules is the shipped tenure table.
var DefaultEntitlementRules = []EntitlementRule{
	{MinYears: 0, Days: 14},
	{MinYears: 5, Days: 21},
	{MinYears: 10, Days: 28},
	{MinYears: 20, Days: 35},
}

// YearsOfServiceAtYearEnd returns completed years of service as of
// December 31 of year, floored at zero. A nil hire date counts as zero
// years; callers that need to distinguish "unknown" carry that flag
// separately.
func YearsOfServiceAtYearEnd(year int, hireDate *leave.Date) int {
	if hireDate == nil || hireDate.IsZero() {
		return 0
	}
	yearEnd := leave.EndOfYear(year)
	if hireDate.After(yearEnd) {
		return 0
	}
	years := year - hireDate.Year()
	// Anniversary not yet reached by Dec 31 only happens when the hire
	// date falls after year-end, handled above. Guard anyway for the
	// same-year case.
	anniversary := hireDate.AddYears(years)
	if anniversary.After(yearEnd) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// EntitlementDaysForYears resolves the tenure table: the Days of the
// highest tier whose MinYears does not exceed years.
func EntitlementDaysForYears(years int, rules []EntitlementRule) int {
	sorted := make([]EntitlementRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinYears < sorted[j].MinYears })

	days := 0
	for _, r := range sorted {
		if r.MinYears <= years {
			days = r.Days
		}
	}
	return days
}

// EntitlementForYear combines service years and the tenure table.
func EntitlementForYear(year int, hireDate *leave.Date, rules []EntitlementRule) int {
	return EntitlementDaysForYears(YearsOfServiceAtYearEnd(year, hireDate), rules)
}
