package balances

import (
	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/policy"
)

// Usage is the approved-only consumption of one bucket, the simpler
// shape the pre-submission quota check reads.
type Usage struct {
	Used leave.Amount
	Unit leave.Unit
}

// UsageByKey sums approved consumption per bucket for the given year.
// A record belongs to the year of its start date.
func (a Aggregator) UsageByKey(absences []leave.AbsenceRecord, year int) map[policy.BalanceKey]Usage {
	out := make(map[policy.BalanceKey]Usage)

	for _, rec := range absences {
		if rec.Status != leave.StatusApproved {
			continue
		}
		if rec.From.Year() != year {
			continue
		}
		def := a.Catalog.Lookup(rec.Type, rec.Subtype)
		if def == nil || !def.Deducts {
			continue
		}

		u, ok := out[def.DeductsFrom]
		if !ok {
			u = Usage{Used: leave.NewAmountFromInt(0, def.Unit), Unit: def.Unit}
		}
		u.Used = u.Used.Add(a.recordAmount(rec, def))
		out[def.DeductsFrom] = u
	}
	return out
}
