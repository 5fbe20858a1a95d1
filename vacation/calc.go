package vacation

import (
	"github.com/lllhub/leave-engine/leave"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how the client-computed balance counts and carries.
type Settings struct {
	CountMode leave.CountMode

	CarryoverEnabled bool

	// CarryoverMaxCycles bounds the backward walk over prior years.
	// Zero means unset and falls back to 50.
	CarryoverMaxCycles int
}

// DefaultSettings are business-day counting with a three-cycle carryover.
func DefaultSettings() Settings {
	return Settings{
		CountMode:          leave.CountBusinessDays,
		CarryoverEnabled:   true,
		CarryoverMaxCycles: 3,
	}
}

func (s Settings) maxCycles() int {
	if s.CarryoverMaxCycles <= 0 {
		return 50
	}
	return s.CarryoverMaxCycles
}

// =============================================================================
// BALANCE
// =============================================================================

// BalanceBasis records which data the balance was derived from, so the
// display layer can caveat numbers built on missing inputs.
type BalanceBasis string

const (
	BasisClientComputed  BalanceBasis = "client_computed"
	BasisServerLedger    BalanceBasis = "server_ledger"
	BasisUnknownHireDate BalanceBasis = "unknown_hire_date"
)

// Balance is the display shape both sources produce.
type Balance struct {
	Entitlement      leave.Amount
	Carryover        leave.Amount
	UsedThisYear     leave.Amount
	ReservedThisYear leave.Amount
	Available        leave.Amount
	Basis            BalanceBasis
}

// Source yields a vacation balance as of a reference date. The date is
// an explicit input so computations stay deterministic under test.
type Source interface {
	Balance(asOf leave.Date) Balance
}

// =============================================================================
// CLIENT-COMPUTED SOURCE
// =============================================================================

// ClientComputed derives the balance from the absence list alone:
// single-year used/reserved with year clamping, and a carryover
// approximation that rolls unused entitlement forward within the cycle
// cap, ignoring true bucket expiration.
type ClientComputed struct {
	Absences []leave.AbsenceRecord
	HireDate *leave.Date
	Rules    []EntitlementRule
	Settings Settings
}

var _ Source = (*ClientComputed)(nil)

func (c *ClientComputed) Balance(asOf leave.Date) Balance {
	year := asOf.Year()

	entitlement := EntitlementForYear(year, c.HireDate, c.Rules)
	used := c.chargeableDaysInYear(year, leave.StatusApproved)
	reserved := c.chargeableDaysInYear(year, leave.StatusPending)

	carryover := 0
	if c.Settings.CarryoverEnabled {
		firstYear := year - c.Settings.maxCycles()
		if c.HireDate != nil && !c.HireDate.IsZero() && c.HireDate.Year() > firstYear {
			firstYear = c.HireDate.Year()
		}
		for y := year - 1; y >= firstYear; y-- {
			unused := EntitlementForYear(y, c.HireDate, c.Rules) - c.chargeableDaysInYear(y, leave.StatusApproved)
			if unused > 0 {
				carryover += unused
			}
		}
	}

	available := entitlement + carryover - used - reserved
	if available < 0 {
		available = 0
	}

	basis := BasisClientComputed
	if c.HireDate == nil || c.HireDate.IsZero() {
		basis = BasisUnknownHireDate
	}

	return Balance{
		Entitlement:      leave.Days(entitlement),
		Carryover:        leave.Days(carryover),
		UsedThisYear:     leave.Days(used),
		ReservedThisYear: leave.Days(reserved),
		Available:        leave.Days(available),
		Basis:            basis,
	}
}

// chargeableDaysInYear sums mode-aware chargeable days of vacation
// records in the given status, each range clamped to the year first.
func (c *ClientComputed) chargeableDaysInYear(year int, status leave.Status) int {
	total := 0
	for _, rec := range c.Absences {
		if rec.Type != leave.TypeVacation || rec.Status != status {
			continue
		}
		from, to, ok := leave.ClampRangeToYear(rec.From, rec.To, year)
		if !ok {
			continue
		}
		total += leave.CountChargeableDays(from, to, c.Settings.CountMode)
	}
	return total
}

// =============================================================================
// SERVER LEDGER SOURCE
// =============================================================================

// ServerLedger adapts a FIFO bucket ledger into the display shape. The
// aggregate totals are already FIFO-correct across the accrual window,
// so only entitlement and carryover are derived here.
type ServerLedger struct {
	Ledger Ledger
}

var _ Source = (*ServerLedger)(nil)

func (s *ServerLedger) Balance(asOf leave.Date) Balance {
	current := s.Ledger.CurrentBucket(asOf)
	if current == nil {
		// No buckets, typically a missing hire date. Surface the raw
		// totals so the display still shows what the ledger knows.
		return Balance{
			Entitlement:      leave.Days(0),
			Carryover:        leave.Days(0),
			UsedThisYear:     s.Ledger.Used,
			ReservedThisYear: leave.Days(0),
			Available:        s.Ledger.Available,
			Basis:            BasisUnknownHireDate,
		}
	}

	carryover := leave.Days(0)
	for _, b := range s.Ledger.Buckets {
		if b.GrantDate.Before(current.GrantDate) {
			carryover = carryover.Add(b.Remaining)
		}
	}

	return Balance{
		Entitlement:      current.Granted,
		Carryover:        carryover,
		UsedThisYear:     s.Ledger.Used,
		ReservedThisYear: leave.Days(0),
		Available:        s.Ledger.Available,
		Basis:            BasisServerLedger,
	}
}
