/*
dto.go - Request/response data structures for the REST API

PURPOSE:
  Defines the JSON shapes crossing the HTTP boundary and their
  conversion to and from domain types. Validation tags on the inbound
  shapes are enforced with go-playground/validator before any domain
  logic runs.

SEE ALSO:
  - handlers.go: where these are read and written
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lllhub/leave-engine/balances"
	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/policy"
	"github.com/lllhub/leave-engine/vacation"
)

// =============================================================================
// INBOUND
// =============================================================================

// AbsenceRequestDTO is the submit/update payload.
type AbsenceRequestDTO struct {
	UserID   string  `json:"user_id" validate:"required"`
	UserName string  `json:"user_name"`
	Type     string  `json:"type" validate:"required,oneof=vacation home_office birthday sick license"`
	Subtype  string  `json:"subtype"`
	From     string  `json:"from" validate:"required,datetime=2006-01-02"`
	To       string  `json:"to" validate:"required,datetime=2006-01-02"`
	Hours    float64 `json:"hours" validate:"gte=0"`
	Note     string  `json:"note"`
}

// ToRecord converts the payload into a domain record. Dates are known
// well-formed once validation has passed.
func (d AbsenceRequestDTO) ToRecord() (leave.AbsenceRecord, error) {
	from, err := leave.ParseDate(d.From)
	if err != nil {
		return leave.AbsenceRecord{}, fmt.Errorf("from: %w", err)
	}
	to, err := leave.ParseDate(d.To)
	if err != nil {
		return leave.AbsenceRecord{}, fmt.Errorf("to: %w", err)
	}
	return leave.AbsenceRecord{
		UserID:   d.UserID,
		UserName: d.UserName,
		Type:     leave.AbsenceType(d.Type),
		Subtype:  leave.LicenseSubtype(d.Subtype),
		From:     from,
		To:       to,
		Hours:    decimal.NewFromFloat(d.Hours),
		Note:     d.Note,
	}, nil
}

// DecisionDTO carries the deciding actor.
type DecisionDTO struct {
	ActorID string `json:"actor_id" validate:"required"`
}

// ProfileDTO is the profile upsert payload and response shape.
type ProfileDTO struct {
	UserID   string `json:"user_id" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,oneof=owner user"`
	HireDate string `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
}

func (d ProfileDTO) ToProfile() (leave.Profile, error) {
	p := leave.Profile{
		UserID:   d.UserID,
		FullName: d.FullName,
		Email:    d.Email,
		Role:     leave.RoleUser,
	}
	if d.Role != "" {
		p.Role = leave.Role(d.Role)
	}
	if d.HireDate != "" {
		hd, err := leave.ParseDate(d.HireDate)
		if err != nil {
			return leave.Profile{}, fmt.Errorf("hire_date: %w", err)
		}
		p.HireDate = &hd
	}
	return p, nil
}

// =============================================================================
// OUTBOUND
// =============================================================================

// AbsenceDTO is the record shape returned by every absence endpoint.
type AbsenceDTO struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name,omitempty"`
	Type      string     `json:"type"`
	Subtype   string     `json:"subtype,omitempty"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Hours     float64    `json:"hours,omitempty"`
	Status    string     `json:"status"`
	Note      string     `json:"note,omitempty"`
	DecidedBy string     `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toAbsenceDTO(rec leave.AbsenceRecord) AbsenceDTO {
	hours, _ := rec.Hours.Float64()
	return AbsenceDTO{
		ID:        rec.ID,
		UserID:    rec.UserID,
		UserName:  rec.UserName,
		Type:      string(rec.Type),
		Subtype:   string(rec.Subtype),
		From:      rec.From.ISO(),
		To:        rec.To.ISO(),
		Hours:     hours,
		Status:    string(rec.Status),
		Note:      rec.Note,
		DecidedBy: rec.DecidedBy,
		DecidedAt: rec.DecidedAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func toAbsenceDTOs(recs []leave.AbsenceRecord) []AbsenceDTO {
	out := make([]AbsenceDTO, len(recs))
	for i, rec := range recs {
		out[i] = toAbsenceDTO(rec)
	}
	return out
}

func toProfileDTO(p leave.Profile) ProfileDTO {
	d := ProfileDTO{
		UserID:   p.UserID,
		FullName: p.FullName,
		Email:    p.Email,
		Role:     string(p.Role),
	}
	if p.HireDate != nil {
		d.HireDate = p.HireDate.ISO()
	}
	return d
}

// VacationBalanceDTO is the vacation balance view.
type VacationBalanceDTO struct {
	Entitlement float64 `json:"entitlement"`
	Carryover   float64 `json:"carryover"`
	Used        float64 `json:"used"`
	Reserved    float64 `json:"reserved"`
	Available   float64 `json:"available"`
	Basis       string  `json:"basis"`
}

func toVacationBalanceDTO(b vacation.Balance) VacationBalanceDTO {
	return VacationBalanceDTO{
		Entitlement: b.Entitlement.Float64(),
		Carryover:   b.Carryover.Float64(),
		Used:        b.UsedThisYear.Float64(),
		Reserved:    b.ReservedThisYear.Float64(),
		Available:   b.Available.Float64(),
		Basis:       string(b.Basis),
	}
}

// BalanceStatsDTO is one bucket's stats.
type BalanceStatsDTO struct {
	Key       string   `json:"key"`
	Unit      string   `json:"unit"`
	Allowance *float64 `json:"allowance"`
	Used      float64  `json:"used"`
	Reserved  float64  `json:"reserved"`
	Available *float64 `json:"available"`
}

func toBalanceStatsDTOs(stats map[policy.BalanceKey]*balances.Stats) []BalanceStatsDTO {
	out := make([]BalanceStatsDTO, 0, len(stats))
	for _, st := range stats {
		d := BalanceStatsDTO{
			Key:      string(st.Key),
			Unit:     string(st.Unit),
			Used:     st.Used.Float64(),
			Reserved: st.Reserved.Float64(),
		}
		if st.Allowance != nil {
			v := st.Allowance.Float64()
			d.Allowance = &v
		}
		if st.Available != nil {
			v := st.Available.Float64()
			d.Available = &v
		}
		out = append(out, d)
	}
	return out
}

// HistoryRowDTO is one export row.
type HistoryRowDTO struct {
	Record    AbsenceDTO `json:"record"`
	PolicyKey string     `json:"policy_key,omitempty"`
	Bucket    string     `json:"bucket,omitempty"`
	Deducts   bool       `json:"deducts"`
	Amount    float64    `json:"amount"`
	Unit      string     `json:"unit,omitempty"`
}

func toHistoryRowDTOs(rows []balances.HistoryRow) []HistoryRowDTO {
	out := make([]HistoryRowDTO, len(rows))
	for i, row := range rows {
		out[i] = HistoryRowDTO{
			Record:    toAbsenceDTO(row.Record),
			PolicyKey: row.PolicyKey,
			Bucket:    string(row.Key),
			Deducts:   row.Deducts,
			Amount:    row.Amount.Float64(),
			Unit:      string(row.Amount.Unit),
		}
	}
	return out
}

// PolicyDTO exposes one catalog entry.
type PolicyDTO struct {
	Key              string   `json:"key"`
	Type             string   `json:"type"`
	Subtype          string   `json:"subtype,omitempty"`
	Unit             string   `json:"unit"`
	Allowance        *float64 `json:"allowance"`
	Deducts          bool     `json:"deducts"`
	DeductsFrom      string   `json:"deducts_from,omitempty"`
	Counting         string   `json:"counting"`
	RequiresApproval bool     `json:"requires_approval"`
	SingleDay        bool     `json:"single_day"`
}

func toPolicyDTOs(defs []policy.Definition) []PolicyDTO {
	out := make([]PolicyDTO, len(defs))
	for i, def := range defs {
		d := PolicyDTO{
			Key:              def.Key,
			Type:             string(def.Type),
			Subtype:          string(def.Subtype),
			Unit:             string(def.Unit),
			Deducts:          def.Deducts,
			DeductsFrom:      string(def.DeductsFrom),
			Counting:         string(def.Counting),
			RequiresApproval: def.RequiresApproval,
			SingleDay:        def.SingleDay,
		}
		if def.Allowance != nil {
			v := def.Allowance.Float64()
			d.Allowance = &v
		}
		out[i] = d
	}
	return out
}

// ApprovalDTO pairs the approved record with what it debits.
type ApprovalDTO struct {
	Record AbsenceDTO `json:"record"`
	Bucket string     `json:"bucket,omitempty"`
	Amount float64    `json:"amount"`
	Unit   string     `json:"unit"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
