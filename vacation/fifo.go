package vacation

import (
	"sort"

	"github.com/lllhub/leave-engine/leave"
)

// =============================================================================
// FIFO LEDGER BUILDER
// =============================================================================

// AccrualWindowYears is how long a vacation grant stays spendable.
const AccrualWindowYears = 3

// LedgerConfig parameterizes the ledger builder.
type LedgerConfig struct {
	HireDate *leave.Date
	Rules    []EntitlementRule
	Mode     leave.CountMode

	// WindowYears defaults to AccrualWindowYears when zero.
	WindowYears int
}

func (c LedgerConfig) windowYears() int {
	if c.WindowYears <= 0 {
		return AccrualWindowYears
	}
	return c.WindowYears
}

// BuildLedger grants one bucket per calendar year (January 1, sized by
// that year's entitlement) within the accrual window, then replays the
// approved vacation absences oldest-first, debiting the oldest bucket
// still active on each absence's start date. A missing hire date yields
// an empty ledger.
func BuildLedger(absences []leave.AbsenceRecord, cfg LedgerConfig, asOf leave.Date) Ledger {
	if cfg.HireDate == nil || cfg.HireDate.IsZero() {
		return Ledger{
			Available: leave.Days(0),
			Granted:   leave.Days(0),
			Used:      leave.Days(0),
		}
	}

	firstYear := asOf.Year() - cfg.windowYears() + 1
	if cfg.HireDate.Year() > firstYear {
		firstYear = cfg.HireDate.Year()
	}

	var buckets []Bucket
	for y := firstYear; y <= asOf.Year(); y++ {
		granted := leave.Days(EntitlementForYear(y, cfg.HireDate, cfg.Rules))
		grant := leave.StartOfYear(y)
		buckets = append(buckets, Bucket{
			GrantDate: grant,
			ExpiresAt: grant.AddYears(cfg.windowYears()),
			Granted:   granted,
			Used:      leave.Days(0),
			Remaining: granted,
		})
	}

	consumeFIFO(buckets, approvedVacationOldestFirst(absences), cfg.Mode)

	ledger := Ledger{
		Available: leave.Days(0),
		Granted:   leave.Days(0),
		Used:      leave.Days(0),
		Buckets:   buckets,
	}
	for i := range buckets {
		b := &buckets[i]
		ledger.Granted = ledger.Granted.Add(b.Granted)
		ledger.Used = ledger.Used.Add(b.Used)
		if b.ExpiresAt.After(asOf) {
			ledger.Available = ledger.Available.Add(b.Remaining)
			if b.Remaining.IsPositive() &&
				(ledger.NextExpiration == nil || b.ExpiresAt.Before(*ledger.NextExpiration)) {
				exp := b.ExpiresAt
				ledger.NextExpiration = &exp
			}
		}
	}
	return ledger
}

func approvedVacationOldestFirst(absences []leave.AbsenceRecord) []leave.AbsenceRecord {
	var out []leave.AbsenceRecord
	for _, rec := range absences {
		if rec.Type == leave.TypeVacation && rec.Status == leave.StatusApproved {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].From.Equal(out[j].From) {
			return out[i].From.Before(out[j].From)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// consumeFIFO debits each absence against the oldest bucket active on
// its start date, cascading the remainder into younger buckets. Days
// that exceed every eligible bucket are dropped; remaining never goes
// negative.
func consumeFIFO(buckets []Bucket, absences []leave.AbsenceRecord, mode leave.CountMode) {
	for _, rec := range absences {
		days := leave.Days(leave.CountChargeableDays(rec.From, rec.To, mode))
		if !days.IsPositive() {
			continue
		}
		for i := range buckets {
			b := &buckets[i]
			if b.GrantDate.After(rec.From) || !b.ExpiresAt.After(rec.From) {
				continue
			}
			if !b.Remaining.IsPositive() {
				continue
			}
			take := days
			if take.GreaterThan(b.Remaining) {
				take = b.Remaining
			}
			b.Used = b.Used.Add(take)
			b.Remaining = b.Remaining.Sub(take)
			days = days.Sub(take)
			if !days.IsPositive() {
				break
			}
		}
	}
}
