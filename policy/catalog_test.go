package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/policy"
)

// =============================================================================
// UNIQUENESS
// =============================================================================

func TestDefaultCatalog_NoDuplicateKeys(t *testing.T) {
	// The shipped table must build, which asserts (type, subtype)
	// uniqueness.
	_, err := policy.NewCatalog(policy.DefaultDefinitions)
	assert.NoError(t, err)
}

func TestNewCatalog_DuplicateRejected(t *testing.T) {
	defs := []policy.Definition{
		{Key: "A", Type: leave.TypeVacation, Unit: leave.UnitDay, Deducts: true, DeductsFrom: policy.VacationDays},
		{Key: "B", Type: leave.TypeVacation, Unit: leave.UnitDay, Deducts: true, DeductsFrom: policy.VacationDays},
	}
	_, err := policy.NewCatalog(defs)
	assert.Error(t, err)
}

func TestNewCatalog_DeductsRequiresBucket(t *testing.T) {
	defs := []policy.Definition{
		{Key: "A", Type: leave.TypeVacation, Unit: leave.UnitDay, Deducts: true},
	}
	_, err := policy.NewCatalog(defs)
	assert.Error(t, err)
}

// =============================================================================
// LOOKUP
// =============================================================================

func TestLookup_SubtypeOnlyForLicenses(t *testing.T) {
	c := policy.Default()

	// Non-license lookup ignores the subtype.
	def := c.Lookup(leave.TypeVacation, leave.SubtypeExam)
	require.NotNil(t, def)
	assert.Equal(t, "VACATION", def.Key)

	// License lookup requires an exact subtype match.
	def = c.Lookup(leave.TypeLicense, leave.SubtypeExam)
	require.NotNil(t, def)
	assert.Equal(t, "LIC_EXAM", def.Key)

	assert.Nil(t, c.Lookup(leave.TypeLicense, "unknown_subtype"))
	assert.Nil(t, c.Lookup(leave.TypeLicense, ""))
}

func TestDefaultCatalog_Allowances(t *testing.T) {
	c := policy.Default()

	vacation := c.Lookup(leave.TypeVacation, "")
	require.NotNil(t, vacation)
	assert.Nil(t, vacation.Allowance, "vacation allowance comes from entitlement, not the catalog")
	assert.Equal(t, policy.CountVacationBusinessDays, vacation.Counting)

	homeOffice := c.Lookup(leave.TypeHomeOffice, "")
	require.NotNil(t, homeOffice)
	require.NotNil(t, homeOffice.Allowance)
	assert.Equal(t, 15.0, homeOffice.Allowance.Float64())

	sick := c.Lookup(leave.TypeSick, "")
	require.NotNil(t, sick)
	assert.False(t, sick.Deducts)
	assert.False(t, sick.RequiresApproval)

	maternity := c.Lookup(leave.TypeLicense, leave.SubtypeMaternity)
	require.NotNil(t, maternity)
	assert.Equal(t, 90.0, maternity.Allowance.Float64())

	errand := c.Lookup(leave.TypeLicense, leave.SubtypePersonalErrand)
	require.NotNil(t, errand)
	assert.Equal(t, leave.UnitHour, errand.Unit)
	assert.Equal(t, 12.0, errand.Allowance.Float64())
	assert.True(t, errand.SingleDay)
}

// =============================================================================
// JSON OVERRIDES
// =============================================================================

func TestParseCatalog_Overrides(t *testing.T) {
	c, err := policy.ParseCatalog([]byte(`{
		"overrides": [
			{"key": "HOME_OFFICE", "allowance": 20},
			{"key": "LIC_EXAM", "unlimited": true}
		]
	}`))
	require.NoError(t, err)

	homeOffice := c.Lookup(leave.TypeHomeOffice, "")
	require.NotNil(t, homeOffice)
	assert.Equal(t, 20.0, homeOffice.Allowance.Float64())

	exam := c.Lookup(leave.TypeLicense, leave.SubtypeExam)
	require.NotNil(t, exam)
	assert.Nil(t, exam.Allowance)

	// Unmentioned entries keep their defaults.
	birthday := c.Lookup(leave.TypeBirthday, "")
	require.NotNil(t, birthday)
	assert.Equal(t, 1.0, birthday.Allowance.Float64())
}

func TestParseCatalog_UnknownKeyRejected(t *testing.T) {
	_, err := policy.ParseCatalog([]byte(`{"overrides": [{"key": "NOPE", "allowance": 5}]}`))
	assert.Error(t, err)
}

func TestParseCatalog_OverridesDoNotLeakIntoDefaults(t *testing.T) {
	_, err := policy.ParseCatalog([]byte(`{"overrides": [{"key": "HOME_OFFICE", "allowance": 99}]}`))
	require.NoError(t, err)

	def := policy.Default().Lookup(leave.TypeHomeOffice, "")
	require.NotNil(t, def)
	assert.Equal(t, 15.0, def.Allowance.Float64())
}
