/*
Package balances aggregates absence records into per-bucket usage stats.

PURPOSE:
  Folds a user's absence list through the policy catalog to answer "how
  much of each quota is used, reserved, and left" for a year or a single
  month, plus the flat usage map the submission quota check consumes and
  per-record history rows for export.

KEY CONCEPTS:
  - Only pending and approved records participate. Rejected records are
    excluded from all balance math.
  - Amount per record follows the policy: hour policies take the record's
    hours field, vacation counts mode-aware chargeable days, every other
    day policy counts calendar-inclusive days.
  - Available is recomputed once after the fold, not incrementally, so
    intermediate clamping cannot distort the result.

SEE ALSO:
  - policy: the catalog resolving each record to a balance bucket
  - usage.go, history.go, deduction.go
*/
package balances

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/policy"
)

// =============================================================================
// STATS
// =============================================================================

// Stats is the derived state of one balance bucket over a window.
type Stats struct {
	Key  policy.BalanceKey
	Unit leave.Unit

	// Allowance is nil for uncapped buckets.
	Allowance *leave.Amount

	Used     leave.Amount
	Reserved leave.Amount

	// Available is nil iff Allowance is nil.
	Available *leave.Amount
}

// Aggregator folds absences through the catalog.
type Aggregator struct {
	Catalog   *policy.Catalog
	CountMode leave.CountMode
}

// StatsByKey computes per-bucket stats for a year, or for one calendar
// month of it when month is non-nil. Membership is a raw overlap test
// against the window; ranges are never clamped before counting.
func (a Aggregator) StatsByKey(absences []leave.AbsenceRecord, year int, month *time.Month) map[policy.BalanceKey]*Stats {
	out := make(map[policy.BalanceKey]*Stats)

	for _, rec := range absences {
		if rec.Status != leave.StatusApproved && rec.Status != leave.StatusPending {
			continue
		}
		if !a.inWindow(rec, year, month) {
			continue
		}
		def := a.Catalog.Lookup(rec.Type, rec.Subtype)
		if def == nil || !def.Deducts {
			continue
		}

		st, ok := out[def.DeductsFrom]
		if !ok {
			st = &Stats{Key: def.DeductsFrom, Unit: def.Unit, Allowance: def.Allowance}
			st.Used = leave.Amount{Value: decimal.Zero, Unit: def.Unit}
			st.Reserved = leave.Amount{Value: decimal.Zero, Unit: def.Unit}
			out[def.DeductsFrom] = st
		}

		amount := a.recordAmount(rec, def)
		if rec.Status == leave.StatusApproved {
			st.Used = st.Used.Add(amount)
		} else {
			st.Reserved = st.Reserved.Add(amount)
		}
	}

	for _, st := range out {
		if st.Allowance != nil {
			avail := st.Allowance.Sub(st.Used).Sub(st.Reserved).ClampZero()
			st.Available = &avail
		}
	}
	return out
}

func (a Aggregator) inWindow(rec leave.AbsenceRecord, year int, month *time.Month) bool {
	if month != nil {
		return leave.OverlapsMonth(rec.From, rec.To, year, *month)
	}
	return rec.From.Year() <= year && rec.To.Year() >= year
}

// recordAmount is the single place mapping a record to a consumed
// amount. Hour policies read the hours field, contributing zero when it
// is not a positive finite number.
func (a Aggregator) recordAmount(rec leave.AbsenceRecord, def *policy.Definition) leave.Amount {
	if def.Unit == leave.UnitHour {
		if rec.Hours.IsPositive() {
			return leave.Amount{Value: rec.Hours, Unit: leave.UnitHour}
		}
		return leave.Hours(0)
	}
	switch def.Counting {
	case policy.CountVacationBusinessDays:
		return leave.Days(leave.CountChargeableDays(rec.From, rec.To, a.CountMode))
	default:
		return leave.Days(leave.CalendarDaysInclusive(rec.From, rec.To))
	}
}
