/*
Package policy defines the absence policy catalog: the static table mapping
each absence type (and license subtype) to its unit, allowance, counting
strategy, and the balance bucket it debits.

PURPOSE:
  One catalog entry answers every question the aggregators ask about a
  request: does it deduct at all, from which named balance, in days or
  hours, and how are its days counted.

KEY CONCEPTS:
  - BalanceKey: a named quota bucket (vacation days, home-office days, one
    per capped license subtype). A classification tag, not an entity.
  - CountingStrategy: vacation counts mode-aware chargeable days; every
    other day policy counts calendar-inclusive days, weekends included.
    The strategy is an explicit attribute so new policies opt in rather
    than riding on a type check.
  - Lookup: exact match on type; subtype participates only for licenses.
    Nil means "cannot validate or deduct" and callers must treat it so.

UNIQUENESS:
  At most one entry may resolve for a (type, subtype) pair. NewCatalog
  rejects duplicates, making collisions a startup failure instead of a
  silent first-match.

SEE ALSO:
  - config.go: loading allowance overrides from JSON
  - balances: the aggregators consuming catalog entries
*/
package policy

import (
	"fmt"

	"github.com/lllhub/leave-engine/leave"
)

// =============================================================================
// BALANCE KEYS
// =============================================================================

// BalanceKey identifies a named quota bucket.
type BalanceKey string

const (
	VacationDays          BalanceKey = "VACATION_DAYS"
	HomeOfficeDays        BalanceKey = "HOME_OFFICE_DAYS"
	BirthdayDay           BalanceKey = "BIRTHDAY_DAY"
	LicFamilyCareDays     BalanceKey = "LIC_FAMILY_CARE_DAYS"
	LicExamDays           BalanceKey = "LIC_EXAM_DAYS"
	LicBereavementClose   BalanceKey = "LIC_BEREAVEMENT_CLOSE_DAYS"
	LicBereavementSibling BalanceKey = "LIC_BEREAVEMENT_SIBLING_DAYS"
	LicPaternityDays      BalanceKey = "LIC_PATERNITY_DAYS"
	LicMaternityDays      BalanceKey = "LIC_MATERNITY_DAYS"
	LicMovingDays         BalanceKey = "LIC_MOVING_DAYS"
	LicPersonalLCTDays    BalanceKey = "LIC_LCT_PERSONAL_DAYS"
	LicPersonalErrandHrs  BalanceKey = "LIC_PERSONAL_ERRAND_HOURS"
	LicMedicalApptHrs     BalanceKey = "LIC_MEDICAL_APPT_HOURS"
)

// =============================================================================
// COUNTING STRATEGY
// =============================================================================

// CountingStrategy names how a day-denominated policy counts a range.
type CountingStrategy string

const (
	// CountVacationBusinessDays counts under the configured count mode
	// (business or calendar days) with year clamping in the vacation
	// calculators.
	CountVacationBusinessDays CountingStrategy = "vacation_business_days"

	// CountCalendarInclusive counts every day in the range, weekends
	// included, with no clamping.
	CountCalendarInclusive CountingStrategy = "calendar_inclusive"
)

// =============================================================================
// DEFINITION
// =============================================================================

// Definition is one catalog entry.
type Definition struct {
	// Key is a stable identifier for configuration and display.
	Key string

	Type    leave.AbsenceType
	Subtype leave.LicenseSubtype // set iff Type == TypeLicense

	Unit leave.Unit

	// Allowance per annual cycle; nil means uncapped.
	Allowance *leave.Amount

	// Deducts tells whether this absence consumes a tracked balance at
	// all. DeductsFrom is present iff Deducts is true.
	Deducts     bool
	DeductsFrom BalanceKey

	Counting CountingStrategy

	// RequiresApproval gates the submission flow; sick leave is recorded
	// without a decision step.
	RequiresApproval bool

	// SingleDay forces To == From (birthday-style one-day policies and
	// all hour-denominated policies).
	SingleDay bool
}

func allowance(n int, unit leave.Unit) *leave.Amount {
	a := leave.NewAmountFromInt(n, unit)
	return &a
}

// DefaultDefinitions is the shipped catalog.
var DefaultDefinitions = []Definition{
	{Key: "VACATION", Type: leave.TypeVacation, Unit: leave.UnitDay, Allowance: nil,
		Deducts: true, DeductsFrom: VacationDays, Counting: CountVacationBusinessDays, RequiresApproval: true},

	{Key: "HOME_OFFICE", Type: leave.TypeHomeOffice, Unit: leave.UnitDay, Allowance: allowance(15, leave.UnitDay),
		Deducts: true, DeductsFrom: HomeOfficeDays, Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "BIRTHDAY", Type: leave.TypeBirthday, Unit: leave.UnitDay, Allowance: allowance(1, leave.UnitDay),
		Deducts: true, DeductsFrom: BirthdayDay, Counting: CountCalendarInclusive, RequiresApproval: true, SingleDay: true},

	{Key: "SICK", Type: leave.TypeSick, Unit: leave.UnitDay, Allowance: nil,
		Deducts: false, Counting: CountCalendarInclusive, RequiresApproval: false},

	{Key: "LIC_FAMILY_CARE", Type: leave.TypeLicense, Subtype: leave.SubtypeFamilyCare, Unit: leave.UnitDay,
		Allowance: allowance(20, leave.UnitDay), Deducts: true, DeductsFrom: LicFamilyCareDays,
		Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "LIC_BIRTHDAY_FREE", Type: leave.TypeLicense, Subtype: leave.SubtypeBirthdayFree, Unit: leave.UnitDay,
		Allowance: allowance(1, leave.UnitDay), Deducts: true, DeductsFrom: BirthdayDay,
		Counting: CountCalendarInclusive, RequiresApproval: true, SingleDay: true},

	{Key: "LIC_EXAM", Type: leave.TypeLicense, Subtype: leave.SubtypeExam, Unit: leave.UnitDay,
		Allowance: allowance(10, leave.UnitDay), Deducts: true, DeductsFrom: LicExamDays,
		Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "LIC_BEREAVEMENT_CLOSE", Type: leave.TypeLicense, Subtype: leave.SubtypeBereavementClose, Unit: leave.UnitDay,
		Allowance: allowance(3, leave.UnitDay), Deducts: true, DeductsFrom: LicBereavementClose,
		Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "LIC_BEREAVEMENT_SIBLING", Type: leave.TypeLicense, Subtype: leave.SubtypeBereavementSibling, Unit: leave.UnitDay,
		Allowance: allowance(1, leave.UnitDay), Deducts: true, DeductsFrom: LicBereavementSibling,
		Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "LIC_PATERNITY", Type: leave.TypeLicense, Subtype: leave.SubtypePaternity, Unit: leave.UnitDay,
		Allowance: allowance(2, leave.UnitDay), Deducts: true, DeductsFrom: LicPaternityDays,
		Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "LIC_MATERNITY", Type: leave.TypeLicense, Subtype: leave.SubtypeMaternity, Unit: leave.UnitDay,
		Allowance: allowance(90, leave.UnitDay), Deducts: true, DeductsFrom: LicMaternityDays,
		Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "LIC_MOVING", Type: leave.TypeLicense, Subtype: leave.SubtypeMoving, Unit: leave.UnitDay,
		Allowance: allowance(1, leave.UnitDay), Deducts: true, DeductsFrom: LicMovingDays,
		Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "LIC_PERSONAL_LCT", Type: leave.TypeLicense, Subtype: leave.SubtypePersonalLCT, Unit: leave.UnitDay,
		Allowance: allowance(6, leave.UnitDay), Deducts: true, DeductsFrom: LicPersonalLCTDays,
		Counting: CountCalendarInclusive, RequiresApproval: true},

	{Key: "LIC_PERSONAL_ERRAND", Type: leave.TypeLicense, Subtype: leave.SubtypePersonalErrand, Unit: leave.UnitHour,
		Allowance: allowance(12, leave.UnitHour), Deducts: true, DeductsFrom: LicPersonalErrandHrs,
		Counting: CountCalendarInclusive, RequiresApproval: true, SingleDay: true},

	{Key: "LIC_MEDICAL_APPT", Type: leave.TypeLicense, Subtype: leave.SubtypeMedicalAppointment, Unit: leave.UnitHour,
		Allowance: allowance(6, leave.UnitHour), Deducts: true, DeductsFrom: LicMedicalApptHrs,
		Counting: CountCalendarInclusive, RequiresApproval: true, SingleDay: true},
}

// =============================================================================
// CATALOG
// =============================================================================

type lookupKey struct {
	Type    leave.AbsenceType
	Subtype leave.LicenseSubtype
}

// Catalog is an immutable set of definitions indexed by (type, subtype).
type Catalog struct {
	defs  []Definition
	index map[lookupKey]*Definition
}

// NewCatalog builds a catalog, rejecting duplicate (type, subtype) keys
// and definitions that deduct without naming a balance.
func NewCatalog(defs []Definition) (*Catalog, error) {
	c := &Catalog{
		defs:  make([]Definition, len(defs)),
		index: make(map[lookupKey]*Definition, len(defs)),
	}
	copy(c.defs, defs)

	for i := range c.defs {
		def := &c.defs[i]
		if def.Type != leave.TypeLicense && def.Subtype != "" {
			return nil, fmt.Errorf("policy %s: subtype only valid for licenses", def.Key)
		}
		if def.Deducts && def.DeductsFrom == "" {
			return nil, fmt.Errorf("policy %s: deducts without a balance key", def.Key)
		}
		k := lookupKey{Type: def.Type, Subtype: def.Subtype}
		if existing, dup := c.index[k]; dup {
			return nil, fmt.Errorf("duplicate policy for (%s, %s): %s and %s",
				def.Type, def.Subtype, existing.Key, def.Key)
		}
		c.index[k] = def
	}
	return c, nil
}

// MustCatalog builds a catalog or panics. For static tables.
func MustCatalog(defs []Definition) *Catalog {
	c, err := NewCatalog(defs)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultCatalog = MustCatalog(DefaultDefinitions)

// Default returns the shipped catalog.
func Default() *Catalog { return defaultCatalog }

// Lookup resolves the definition for a (type, subtype) pair. Subtype is
// ignored unless the type is a license. Returns nil when nothing matches;
// callers must treat nil as "cannot validate or deduct", never default.
func (c *Catalog) Lookup(t leave.AbsenceType, subtype leave.LicenseSubtype) *Definition {
	if t != leave.TypeLicense {
		subtype = ""
	}
	return c.index[lookupKey{Type: t, Subtype: subtype}]
}

// Definitions returns the catalog entries in declaration order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}
