/*
Package leave provides the core domain model for the absence engine.

PURPOSE:
  This package contains the types and pure calculations shared by every
  other package: civil dates and day counting, quantities with units,
  absence records with their status machine, overlap detection, and the
  storage interfaces the persistence layer implements.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: a quantity with a unit (e.g. 5 days, 6 hours)
  - AbsenceRecord: a single leave request with an inclusive date range
  - Status: pending -> approved/rejected, with administrative revert
  - Profile: the slice of an employee record this engine consumes

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all quantities, no float drift
  2. Determinism: every calculation takes its reference date as input
  3. Forgiving core: calculations never panic on odd input; callers
     own validation and the request service enforces it

SEE ALSO:
  - date.go: Date, counting modes, year clamping
  - overlap.go: conflict detection between records
  - store.go: persistence interfaces
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Unit string

const (
	UnitDay  Unit = "day"
	UnitHour Unit = "hour"
)

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

func Days(n int) Amount  { return NewAmountFromInt(n, UnitDay) }
func Hours(n int) Amount { return NewAmountFromInt(n, UnitHour) }

func (a Amount) Zero() Amount              { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Neg() Amount               { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool    { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }

// ClampZero floors a negative amount at zero. Displayed availability is
// never negative even when usage exceeds the allowance.
func (a Amount) ClampZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// =============================================================================
// ABSENCE CLASSIFICATION
// =============================================================================

// AbsenceType is the top-level classification of a leave request.
type AbsenceType string

const (
	TypeVacation   AbsenceType = "vacation"
	TypeHomeOffice AbsenceType = "home_office"
	TypeBirthday   AbsenceType = "birthday"
	TypeSick       AbsenceType = "sick"
	TypeLicense    AbsenceType = "license"
)

// LicenseSubtype identifies a specific license policy. Only meaningful when
// the absence type is TypeLicense.
type LicenseSubtype string

const (
	SubtypeFamilyCare         LicenseSubtype = "family_care"
	SubtypeBirthdayFree       LicenseSubtype = "birthday_free"
	SubtypeExam               LicenseSubtype = "exam"
	SubtypeBereavementClose   LicenseSubtype = "bereavement_close_family"
	SubtypeBereavementSibling LicenseSubtype = "bereavement_sibling"
	SubtypePaternity          LicenseSubtype = "paternity"
	SubtypeMaternity          LicenseSubtype = "maternity"
	SubtypeMoving             LicenseSubtype = "moving"
	SubtypePersonalLCT        LicenseSubtype = "personal_lct"
	SubtypePersonalErrand     LicenseSubtype = "personal_errand"
	SubtypeMedicalAppointment LicenseSubtype = "medical_appointment"
)

// =============================================================================
// STATUS - Three-state decision machine
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// CanTransitionTo reports whether the status machine allows a move.
// pending -> approved|rejected on a decision; approved|rejected -> pending
// is the administrative revert. Everything else is invalid.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved, StatusRejected:
		return next == StatusPending
	}
	return false
}

// IsLive reports whether a record in this status occupies its date range.
// Rejected records never block new requests or count toward balances.
func (s Status) IsLive() bool {
	return s == StatusPending || s == StatusApproved
}

// =============================================================================
// ABSENCE RECORD
// =============================================================================

// AbsenceRecord is a single leave request over an inclusive date range.
//
// Invariants:
//   - To >= From; hour-denominated policies additionally require To == From
//   - per user, no two live (pending/approved) records overlap; the store
//     enforces this authoritatively, FindOverlapping is advisory
type AbsenceRecord struct {
	ID       string
	UserID   string
	UserName string

	From Date
	To   Date

	Type    AbsenceType
	Subtype LicenseSubtype // set iff Type == TypeLicense
	Hours   decimal.Decimal

	Status Status
	Note   string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Decision audit, set when status leaves pending.
	DecidedBy string
	DecidedAt *time.Time
}

// =============================================================================
// PROFILE - External identity slice this engine consumes
// =============================================================================

type Role string

const (
	RoleOwner Role = "owner"
	RoleUser  Role = "user"
)

// Profile carries the fields the engine needs from the identity service:
// the hire date for entitlement, and the role for API-level checks.
type Profile struct {
	UserID   string
	FullName string
	Email    string
	Role     Role
	HireDate *Date // nil when unknown; entitlement then defaults to the minimum tier
}
