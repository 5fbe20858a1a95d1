package requests_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/leave/store"
	"github.com/lllhub/leave-engine/policy"
	"github.com/lllhub/leave-engine/requests"
	"github.com/lllhub/leave-engine/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*requests.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()

	hire := leave.MustParseDate("2020-01-01")
	require.NoError(t, mem.SaveProfile(context.Background(), leave.Profile{
		UserID:   "u-1",
		FullName: "Ada Example",
		Role:     leave.RoleUser,
		HireDate: &hire,
	}))

	svc := &requests.Service{
		Store:    mem,
		Profiles: mem,
		Catalog:  policy.Default(),
		Settings: vacation.DefaultSettings(),
		Rules:    vacation.DefaultEntitlementRules,
		Now: func() time.Time {
			return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
		},
	}
	return svc, mem
}

func request(typ leave.AbsenceType, subtype leave.LicenseSubtype, from, to string) leave.AbsenceRecord {
	return leave.AbsenceRecord{
		UserID:  "u-1",
		Type:    typ,
		Subtype: subtype,
		From:    leave.MustParseDate(from),
		To:      leave.MustParseDate(to),
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_VacationGoesPending(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.Submit(context.Background(), request(leave.TypeVacation, "", "2024-07-01", "2024-07-05"))
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, rec.Status)
	assert.NotEmpty(t, rec.ID)
}

func TestSubmit_SickIsAutoApproved(t *testing.T) {
	// Sick leave needs no decision step.
	svc, _ := newTestService(t)

	rec, err := svc.Submit(context.Background(), request(leave.TypeSick, "", "2024-06-03", "2024-06-04"))
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, rec.Status)
}

func TestSubmit_InvertedRangeRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), request(leave.TypeVacation, "", "2024-07-05", "2024-07-01"))
	assert.ErrorIs(t, err, leave.ErrInvalidRange)
}

func TestSubmit_UnknownSubtypeRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), request(leave.TypeLicense, "who_knows", "2024-07-01", "2024-07-01"))
	assert.ErrorIs(t, err, leave.ErrPolicyNotFound)
}

func TestSubmit_HourPolicyRequiresHours(t *testing.T) {
	svc, _ := newTestService(t)

	rec := request(leave.TypeLicense, leave.SubtypeMedicalAppointment, "2024-07-01", "2024-07-01")
	_, err := svc.Submit(context.Background(), rec)
	assert.ErrorIs(t, err, leave.ErrInvalidHours)

	rec.Hours = decimal.NewFromFloat(2)
	_, err = svc.Submit(context.Background(), rec)
	assert.NoError(t, err)
}

func TestSubmit_SingleDayPolicyRejectsRanges(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), request(leave.TypeBirthday, "", "2024-07-01", "2024-07-02"))
	assert.ErrorIs(t, err, leave.ErrInvalidRange)
}

func TestSubmit_OverlapRejected(t *testing.T) {
	// GIVEN: A pending vacation on the books
	// WHEN: Submitting an intersecting sick day
	// THEN: The overlap error names the conflicting record

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, request(leave.TypeVacation, "", "2024-07-01", "2024-07-05"))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, request(leave.TypeSick, "", "2024-07-05", "2024-07-06"))
	require.Error(t, err)

	var overlapErr *leave.OverlapError
	require.ErrorAs(t, err, &overlapErr)
	assert.Equal(t, first.ID, overlapErr.Conflict.ID)
}

func TestSubmit_QuotaExceeded(t *testing.T) {
	// GIVEN: The single birthday day already reserved
	// WHEN: Requesting another birthday-free day
	// THEN: Insufficient balance on BIRTHDAY_DAY

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, request(leave.TypeBirthday, "", "2024-05-10", "2024-05-10"))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, request(leave.TypeLicense, leave.SubtypeBirthdayFree, "2024-08-10", "2024-08-10"))
	require.Error(t, err)

	var balErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, string(policy.BirthdayDay), balErr.BalanceKey)
}

func TestSubmit_VacationQuotaChecked(t *testing.T) {
	// Hired 2022-06-15: buckets 2022-2024 hold 14 days each, so a 50
	// business-day request cannot fit.
	svc, mem := newTestService(t)
	ctx := context.Background()

	hire := leave.MustParseDate("2022-06-15")
	require.NoError(t, mem.SaveProfile(ctx, leave.Profile{UserID: "u-2", FullName: "Ben Example", HireDate: &hire}))

	rec := request(leave.TypeVacation, "", "2024-07-01", "2024-09-20")
	rec.UserID = "u-2"
	_, err := svc.Submit(ctx, rec)

	var balErr *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, string(policy.VacationDays), balErr.BalanceKey)
}

func TestValidate_DryRunDoesNotPersist(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	err := svc.Validate(ctx, request(leave.TypeVacation, "", "2024-07-01", "2024-07-05"))
	require.NoError(t, err)

	recs, err := mem.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

// =============================================================================
// EDITING
// =============================================================================

func TestUpdate_DoesNotConflictWithItself(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, request(leave.TypeVacation, "", "2024-07-01", "2024-07-05"))
	require.NoError(t, err)

	rec.To = leave.MustParseDate("2024-07-04")
	updated, err := svc.Update(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "2024-07-04", updated.To.ISO())
}

// =============================================================================
// DECISIONS
// =============================================================================

func TestApprove_ReturnsDeduction(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, request(leave.TypeVacation, "", "2024-07-01", "2024-07-05")) // Mon-Fri
	require.NoError(t, err)

	approved, ded, err := svc.Approve(ctx, rec.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	assert.Equal(t, "owner-1", approved.DecidedBy)
	assert.True(t, ded.Deducts)
	assert.Equal(t, policy.VacationDays, ded.Key)
	assert.Equal(t, 5.0, ded.Amount.Float64())
}

func TestRejectThenReopen(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, request(leave.TypeVacation, "", "2024-07-01", "2024-07-05"))
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, rec.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)

	reopened, err := svc.Reopen(ctx, rec.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, reopened.Status)
	assert.Empty(t, reopened.DecidedBy)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestVacationBalance_LedgerBasisWithReservedOverlay(t *testing.T) {
	// GIVEN: Hired 2020, one approved week and one pending pair of days
	// WHEN: Reading the vacation balance
	// THEN: The ledger supplies used/available and the pending scan
	//       supplies the reservation

	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, request(leave.TypeVacation, "", "2024-03-04", "2024-03-08"))
	require.NoError(t, err)
	_, _, err = svc.Approve(ctx, rec.ID, "owner-1")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, request(leave.TypeVacation, "", "2024-05-06", "2024-05-07"))
	require.NoError(t, err)

	bal, err := svc.VacationBalance(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, vacation.BasisServerLedger, bal.Basis)

	// Buckets 2022-2024 hold 14 each; 5 approved consumed FIFO,
	// 2 pending reserved on top.
	assert.Equal(t, 14.0, bal.Entitlement.Float64())
	assert.Equal(t, 5.0, bal.UsedThisYear.Float64())
	assert.Equal(t, 2.0, bal.ReservedThisYear.Float64())
	assert.Equal(t, 35.0, bal.Available.Float64()) // 42 - 5 - 2
}

func TestVacationBalance_MissingProfileFallsBack(t *testing.T) {
	svc, _ := newTestService(t)

	bal, err := svc.VacationBalance(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, vacation.BasisUnknownHireDate, bal.Basis)
	assert.Equal(t, 0.0, bal.Entitlement.Float64())
}
