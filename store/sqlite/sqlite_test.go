package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newRecord(user, from, to string) leave.AbsenceRecord {
	return leave.AbsenceRecord{
		UserID: user,
		Type:   leave.TypeVacation,
		From:   leave.MustParseDate(from),
		To:     leave.MustParseDate(to),
		Hours:  decimal.Zero,
	}
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestSQLite_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := newRecord("u-1", "2024-03-04", "2024-03-08")
	rec.Note = "spring break"
	rec.Hours = decimal.NewFromFloat(2.5)

	created, err := s.Create(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, leave.StatusPending, created.Status)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "2024-03-04", got.From.ISO())
	assert.Equal(t, "2024-03-08", got.To.ISO())
	assert.Equal(t, "spring break", got.Note)
	assert.True(t, got.Hours.Equal(decimal.NewFromFloat(2.5)))
}

func TestSQLite_Get_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, leave.ErrRecordNotFound)
}

func TestSQLite_ListByUser_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, newRecord("u-1", "2024-03-04", "2024-03-05"))
	require.NoError(t, err)
	second, err := s.Create(ctx, newRecord("u-1", "2024-04-01", "2024-04-02"))
	require.NoError(t, err)
	_, err = s.Create(ctx, newRecord("u-2", "2024-03-04", "2024-03-05"))
	require.NoError(t, err)

	recs, err := s.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, second.ID, recs[0].ID)
}

// =============================================================================
// EXCLUSION TRIGGERS
// =============================================================================

func TestSQLite_OverlapInsertRejected(t *testing.T) {
	// GIVEN: A live absence in the table
	// WHEN: Inserting an intersecting one for the same user
	// THEN: The trigger aborts and the error carries the conflict

	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, newRecord("u-1", "2024-03-04", "2024-03-08"))
	require.NoError(t, err)

	_, err = s.Create(ctx, newRecord("u-1", "2024-03-08", "2024-03-12"))
	require.Error(t, err)
	assert.ErrorIs(t, err, leave.ErrOverlap)

	var overlapErr *leave.OverlapError
	require.ErrorAs(t, err, &overlapErr)
	require.NotNil(t, overlapErr.Conflict)
	assert.Equal(t, first.ID, overlapErr.Conflict.ID)
}

func TestSQLite_OverlapUpdateRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, newRecord("u-1", "2024-03-04", "2024-03-08"))
	require.NoError(t, err)
	second, err := s.Create(ctx, newRecord("u-1", "2024-03-11", "2024-03-15"))
	require.NoError(t, err)

	second.From = leave.MustParseDate("2024-03-07")
	_, err = s.Update(ctx, second)
	assert.ErrorIs(t, err, leave.ErrOverlap)
}

func TestSQLite_RejectedDoesNotBlock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, newRecord("u-1", "2024-03-04", "2024-03-08"))
	require.NoError(t, err)
	_, err = s.SetStatus(ctx, rec.ID, leave.StatusRejected, "owner-1", time.Now())
	require.NoError(t, err)

	_, err = s.Create(ctx, newRecord("u-1", "2024-03-04", "2024-03-08"))
	assert.NoError(t, err)
}

func TestSQLite_DifferentUsersDoNotBlock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, newRecord("u-1", "2024-03-04", "2024-03-08"))
	require.NoError(t, err)
	_, err = s.Create(ctx, newRecord("u-2", "2024-03-04", "2024-03-08"))
	assert.NoError(t, err)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestSQLite_UpdateOnlyWhilePending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, newRecord("u-1", "2024-03-04", "2024-03-08"))
	require.NoError(t, err)
	_, err = s.SetStatus(ctx, rec.ID, leave.StatusApproved, "owner-1", time.Now())
	require.NoError(t, err)

	rec.Note = "edited"
	_, err = s.Update(ctx, rec)
	assert.ErrorIs(t, err, leave.ErrNotPending)

	err = s.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, leave.ErrNotPending)
}

func TestSQLite_SetStatus_StampsAndClears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, newRecord("u-1", "2024-03-04", "2024-03-08"))
	require.NoError(t, err)

	decidedAt := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	approved, err := s.SetStatus(ctx, rec.ID, leave.StatusApproved, "owner-1", decidedAt)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", approved.DecidedBy)
	require.NotNil(t, approved.DecidedAt)
	assert.True(t, approved.DecidedAt.Equal(decidedAt))

	// approved -> rejected is forbidden
	_, err = s.SetStatus(ctx, rec.ID, leave.StatusRejected, "owner-1", time.Now())
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	reopened, err := s.SetStatus(ctx, rec.ID, leave.StatusPending, "owner-1", time.Now())
	require.NoError(t, err)
	assert.Empty(t, reopened.DecidedBy)
	assert.Nil(t, reopened.DecidedAt)
}

// =============================================================================
// PROFILES
// =============================================================================

func TestSQLite_ProfileUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	hire := leave.MustParseDate("2020-01-15")
	require.NoError(t, s.SaveProfile(ctx, leave.Profile{
		UserID:   "u-1",
		FullName: "Ada Example",
		Email:    "ada@example.com",
		Role:     leave.RoleOwner,
		HireDate: &hire,
	}))

	p, err := s.Profile(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, leave.RoleOwner, p.Role)
	require.NotNil(t, p.HireDate)
	assert.Equal(t, "2020-01-15", p.HireDate.ISO())

	// Upsert replaces
	require.NoError(t, s.SaveProfile(ctx, leave.Profile{UserID: "u-1", FullName: "Ada Renamed", Role: leave.RoleUser}))
	p, err = s.Profile(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Renamed", p.FullName)
	assert.Nil(t, p.HireDate)

	_, err = s.Profile(ctx, "u-2")
	assert.ErrorIs(t, err, leave.ErrProfileNotFound)
}

func TestSQLite_ListProfiles_OrderedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, leave.Profile{UserID: "u-2", FullName: "Zoe"}))
	require.NoError(t, s.SaveProfile(ctx, leave.Profile{UserID: "u-1", FullName: "Ada"}))

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Ada", profiles[0].FullName)
}
