package vacation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/vacation"
)

func vacationRecord(id, from, to string, status leave.Status) leave.AbsenceRecord {
	return leave.AbsenceRecord{
		ID:     id,
		UserID: "u-1",
		Type:   leave.TypeVacation,
		From:   leave.MustParseDate(from),
		To:     leave.MustParseDate(to),
		Status: status,
	}
}

// =============================================================================
// CLIENT-COMPUTED SOURCE
// =============================================================================

func TestClientComputed_NoAbsences(t *testing.T) {
	// GIVEN: Hired 2020-01-01, nothing taken
	// WHEN: Computing the balance mid-2024 with a 3-cycle carryover
	// THEN: Entitlement 14 plus 14 for each of the 3 prior years

	hire := leave.MustParseDate("2020-01-01")
	src := &vacation.ClientComputed{
		HireDate: &hire,
		Rules:    vacation.DefaultEntitlementRules,
		Settings: vacation.DefaultSettings(),
	}

	bal := src.Balance(leave.MustParseDate("2024-06-01"))
	assert.Equal(t, 14.0, bal.Entitlement.Float64())
	assert.Equal(t, 42.0, bal.Carryover.Float64())
	assert.Equal(t, 0.0, bal.UsedThisYear.Float64())
	assert.Equal(t, 0.0, bal.ReservedThisYear.Float64())
	assert.Equal(t, 56.0, bal.Available.Float64())
	assert.Equal(t, vacation.BasisClientComputed, bal.Basis)
}

func TestClientComputed_UsedAndReserved(t *testing.T) {
	hire := leave.MustParseDate("2020-01-01")
	src := &vacation.ClientComputed{
		Absences: []leave.AbsenceRecord{
			vacationRecord("a", "2024-03-04", "2024-03-08", leave.StatusApproved), // 5 business days
			vacationRecord("b", "2024-05-06", "2024-05-07", leave.StatusPending),  // 2 business days
			vacationRecord("c", "2024-04-01", "2024-04-05", leave.StatusRejected), // excluded
		},
		HireDate: &hire,
		Rules:    vacation.DefaultEntitlementRules,
		Settings: vacation.DefaultSettings(),
	}

	bal := src.Balance(leave.MustParseDate("2024-06-01"))
	assert.Equal(t, 5.0, bal.UsedThisYear.Float64())
	assert.Equal(t, 2.0, bal.ReservedThisYear.Float64())
	assert.Equal(t, 49.0, bal.Available.Float64()) // 14 + 42 - 5 - 2
}

func TestClientComputed_CrossYearRangeClampedBeforeCounting(t *testing.T) {
	// GIVEN: An approved absence spanning New Year
	// WHEN: Computing 2024's balance
	// THEN: Only the 2024 portion counts against 2024, and the 2023
	//       portion shrinks 2023's carryover contribution

	hire := leave.MustParseDate("2023-01-01")
	src := &vacation.ClientComputed{
		Absences: []leave.AbsenceRecord{
			// Fri 2023-12-29 .. Wed 2024-01-03: one business day in 2023,
			// three in 2024 (Jan 1-3).
			vacationRecord("a", "2023-12-29", "2024-01-03", leave.StatusApproved),
		},
		HireDate: &hire,
		Rules:    vacation.DefaultEntitlementRules,
		Settings: vacation.DefaultSettings(),
	}

	bal := src.Balance(leave.MustParseDate("2024-06-01"))
	assert.Equal(t, 3.0, bal.UsedThisYear.Float64())
	assert.Equal(t, 13.0, bal.Carryover.Float64()) // 14 - 1 used in 2023
}

func TestClientComputed_CarryoverDisabled(t *testing.T) {
	hire := leave.MustParseDate("2020-01-01")
	settings := vacation.DefaultSettings()
	settings.CarryoverEnabled = false

	src := &vacation.ClientComputed{HireDate: &hire, Rules: vacation.DefaultEntitlementRules, Settings: settings}
	bal := src.Balance(leave.MustParseDate("2024-06-01"))
	assert.Equal(t, 0.0, bal.Carryover.Float64())
	assert.Equal(t, 14.0, bal.Available.Float64())
}

func TestClientComputed_MissingHireDate_FlaggedBasis(t *testing.T) {
	src := &vacation.ClientComputed{Rules: vacation.DefaultEntitlementRules, Settings: vacation.DefaultSettings()}
	bal := src.Balance(leave.MustParseDate("2024-06-01"))
	assert.Equal(t, vacation.BasisUnknownHireDate, bal.Basis)
}

// =============================================================================
// SERVER LEDGER SOURCE
// =============================================================================

func bucket(grant string, granted, remaining int) vacation.Bucket {
	g := leave.MustParseDate(grant)
	return vacation.Bucket{
		GrantDate: g,
		ExpiresAt: g.AddYears(3),
		Granted:   leave.Days(granted),
		Used:      leave.Days(granted - remaining),
		Remaining: leave.Days(remaining),
	}
}

func TestServerLedger_DerivesEntitlementAndCarryover(t *testing.T) {
	// GIVEN: Three annual buckets, the older two partly consumed
	// WHEN: Adapting the ledger to the display shape
	// THEN: The newest active bucket is the entitlement, older
	//       remainders form the carryover, totals pass through

	src := &vacation.ServerLedger{Ledger: vacation.Ledger{
		Available: leave.Days(30),
		Used:      leave.Days(12),
		Buckets: []vacation.Bucket{
			bucket("2022-01-01", 14, 2),
			bucket("2023-01-01", 14, 14),
			bucket("2024-01-01", 14, 14),
		},
	}}

	bal := src.Balance(leave.MustParseDate("2024-06-01"))
	assert.Equal(t, 14.0, bal.Entitlement.Float64())
	assert.Equal(t, 16.0, bal.Carryover.Float64()) // 2 + 14
	assert.Equal(t, 12.0, bal.UsedThisYear.Float64())
	assert.Equal(t, 30.0, bal.Available.Float64())
	assert.Equal(t, vacation.BasisServerLedger, bal.Basis)
}

func TestServerLedger_NoBuckets_DegradesToTotals(t *testing.T) {
	src := &vacation.ServerLedger{Ledger: vacation.Ledger{
		Available: leave.Days(7),
		Used:      leave.Days(3),
	}}

	bal := src.Balance(leave.MustParseDate("2024-06-01"))
	assert.Equal(t, 0.0, bal.Entitlement.Float64())
	assert.Equal(t, 0.0, bal.Carryover.Float64())
	assert.Equal(t, 3.0, bal.UsedThisYear.Float64())
	assert.Equal(t, 7.0, bal.Available.Float64())
	assert.Equal(t, vacation.BasisUnknownHireDate, bal.Basis)
}
