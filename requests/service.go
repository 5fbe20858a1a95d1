/*
Package requests orchestrates the absence request lifecycle.

PURPOSE:
  Handles the full lifecycle of absence requests:
  1. Submission: validate range, policy, overlap, and quota
  2. Pending: edits and deletion allowed, balance reserved
  3. Approval: decision stamped, deduction computed
  4. Rejection: record kept but excluded from balance math
  5. Reopen: a decided record reverted to pending for correction

REQUEST FLOW:
  User submits ──▶ validate ──▶ store (pending) ──▶ decision
                                                      │
                                      ┌───────────────┤
                                      ▼               ▼
                                  approved        rejected
                                (deducts quota)  (releases hold)

VALIDATION ORDER:
  Range first, then policy resolution, then shape checks (hours,
  single-day), then overlap, then quota. The first failure wins, so a
  request with a bad range never reaches the quota math.

ADVISORY vs AUTHORITATIVE:
  The overlap check here is advisory: two concurrent submissions can
  both pass it. The store's exclusion constraint is the authoritative
  guarantee and its overlap error is surfaced identically.

SEE ALSO:
  - policy: request shape and quota rules
  - balances: quota usage and deduction math
  - vacation: the vacation balance both sources feed
*/
package requests

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lllhub/leave-engine/balances"
	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/policy"
	"github.com/lllhub/leave-engine/vacation"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service orchestrates the absence request lifecycle.
type Service struct {
	Store    leave.AbsenceStore
	Profiles leave.ProfileStore
	Catalog  *policy.Catalog
	Settings vacation.Settings
	Rules    []vacation.EntitlementRule
	Log      *logrus.Logger

	// Now supplies the reference time, defaulting to the wall clock.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) today() leave.Date {
	return leave.DateOf(s.now())
}

func (s *Service) aggregator() balances.Aggregator {
	return balances.Aggregator{Catalog: s.Catalog, CountMode: s.Settings.CountMode}
}

func (s *Service) log() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit validates a new request and stores it pending. Policies that
// need no approval (sick leave) are stored approved directly.
func (s *Service) Submit(ctx context.Context, rec leave.AbsenceRecord) (leave.AbsenceRecord, error) {
	def, err := s.validate(ctx, rec, "")
	if err != nil {
		return leave.AbsenceRecord{}, err
	}

	rec.Status = leave.StatusPending
	if !def.RequiresApproval {
		rec.Status = leave.StatusApproved
	}

	created, err := s.Store.Create(ctx, rec)
	if err != nil {
		return leave.AbsenceRecord{}, err
	}

	s.log().WithFields(logrus.Fields{
		"record": created.ID,
		"user":   created.UserID,
		"type":   created.Type,
		"from":   created.From.ISO(),
		"to":     created.To.ISO(),
		"status": created.Status,
	}).Info("absence submitted")
	return created, nil
}

// Validate runs the submission checks without persisting. Used by the
// pre-submission endpoint so the UI can warn before the user commits.
func (s *Service) Validate(ctx context.Context, rec leave.AbsenceRecord) error {
	_, err := s.validate(ctx, rec, rec.ID)
	return err
}

// Update replaces the mutable fields of a pending request after
// re-running validation, excluding the record itself from the overlap
// scan.
func (s *Service) Update(ctx context.Context, rec leave.AbsenceRecord) (leave.AbsenceRecord, error) {
	if _, err := s.validate(ctx, rec, rec.ID); err != nil {
		return leave.AbsenceRecord{}, err
	}
	updated, err := s.Store.Update(ctx, rec)
	if err != nil {
		return leave.AbsenceRecord{}, err
	}
	s.log().WithFields(logrus.Fields{"record": updated.ID, "user": updated.UserID}).Info("absence updated")
	return updated, nil
}

// Delete removes a pending request.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.log().WithField("record", id).Info("absence deleted")
	return nil
}

// validate runs the submission pipeline. ignoreID excludes a record
// from the overlap scan when editing. Returns the resolved definition
// so Submit can read RequiresApproval without a second lookup.
func (s *Service) validate(ctx context.Context, rec leave.AbsenceRecord, ignoreID string) (*policy.Definition, error) {
	// 1. Range sanity
	if rec.From.IsZero() || rec.To.IsZero() || rec.To.Before(rec.From) {
		return nil, leave.ErrInvalidRange
	}

	// 2. Policy resolution
	def := s.Catalog.Lookup(rec.Type, rec.Subtype)
	if def == nil {
		return nil, leave.ErrPolicyNotFound
	}

	// 3. Shape checks
	if def.Unit == leave.UnitHour && !rec.Hours.IsPositive() {
		return nil, leave.ErrInvalidHours
	}
	if def.SingleDay && !rec.To.Equal(rec.From) {
		return nil, leave.ErrInvalidRange
	}

	// 4. Advisory overlap scan
	existing, err := s.Store.ListByUser(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}
	if conflict := leave.FindOverlapping(existing, rec.From, rec.To, leave.OverlapOptions{IgnoreID: ignoreID}); conflict != nil {
		return nil, &leave.OverlapError{UserID: rec.UserID, From: rec.From, To: rec.To, Conflict: conflict}
	}

	// 5. Quota
	if err := s.checkQuota(ctx, rec, def, existing, ignoreID); err != nil {
		return nil, err
	}
	return def, nil
}

// checkQuota verifies the request fits the remaining balance. Vacation
// draws on the vacation balance source; capped policies draw on the
// per-bucket stats. Uncapped or non-deducting policies always pass.
func (s *Service) checkQuota(ctx context.Context, rec leave.AbsenceRecord, def *policy.Definition, existing []leave.AbsenceRecord, ignoreID string) error {
	if !def.Deducts {
		return nil
	}

	others := existing
	if ignoreID != "" {
		others = make([]leave.AbsenceRecord, 0, len(existing))
		for _, e := range existing {
			if e.ID != ignoreID {
				others = append(others, e)
			}
		}
	}

	agg := s.aggregator()
	requested := agg.AmountFor(rec, def)

	if def.DeductsFrom == policy.VacationDays {
		bal, err := s.vacationBalance(ctx, rec.UserID, others)
		if err != nil {
			return err
		}
		if requested.GreaterThan(bal.Available) {
			return &leave.InsufficientBalanceError{
				UserID:     rec.UserID,
				BalanceKey: string(def.DeductsFrom),
				Available:  bal.Available,
				Requested:  requested,
			}
		}
		return nil
	}

	if def.Allowance == nil {
		return nil
	}

	stats := agg.StatsByKey(others, s.today().Year(), nil)
	available := *def.Allowance
	if st, ok := stats[def.DeductsFrom]; ok && st.Available != nil {
		available = *st.Available
	}
	if requested.GreaterThan(available) {
		return &leave.InsufficientBalanceError{
			UserID:     rec.UserID,
			BalanceKey: string(def.DeductsFrom),
			Available:  available,
			Requested:  requested,
		}
	}
	return nil
}

// =============================================================================
// DECISIONS
// =============================================================================

// Approve transitions a pending request to approved and returns the
// deduction it charges.
func (s *Service) Approve(ctx context.Context, id, actorID string) (leave.AbsenceRecord, balances.Deduction, error) {
	rec, err := s.Store.SetStatus(ctx, id, leave.StatusApproved, actorID, s.now())
	if err != nil {
		return leave.AbsenceRecord{}, balances.Deduction{}, err
	}
	ded, err := s.aggregator().DeductionFor(rec)
	if err != nil {
		return leave.AbsenceRecord{}, balances.Deduction{}, err
	}
	s.log().WithFields(logrus.Fields{
		"record": rec.ID,
		"user":   rec.UserID,
		"actor":  actorID,
		"amount": ded.Amount.Value,
		"bucket": ded.Key,
	}).Info("absence approved")
	return rec, ded, nil
}

// Reject transitions a pending request to rejected, releasing its hold
// on the balance.
func (s *Service) Reject(ctx context.Context, id, actorID string) (leave.AbsenceRecord, error) {
	rec, err := s.Store.SetStatus(ctx, id, leave.StatusRejected, actorID, s.now())
	if err != nil {
		return leave.AbsenceRecord{}, err
	}
	s.log().WithFields(logrus.Fields{"record": rec.ID, "actor": actorID}).Info("absence rejected")
	return rec, nil
}

// Reopen reverts a decided request to pending so it can be corrected.
func (s *Service) Reopen(ctx context.Context, id, actorID string) (leave.AbsenceRecord, error) {
	rec, err := s.Store.SetStatus(ctx, id, leave.StatusPending, actorID, s.now())
	if err != nil {
		return leave.AbsenceRecord{}, err
	}
	s.log().WithFields(logrus.Fields{"record": rec.ID, "actor": actorID}).Info("absence reopened")
	return rec, nil
}

// =============================================================================
// BALANCES
// =============================================================================

// VacationBalance computes a user's vacation balance as of today, using
// the FIFO ledger when the hire date is known and degrading to the
// client-computed walk otherwise.
func (s *Service) VacationBalance(ctx context.Context, userID string) (vacation.Balance, error) {
	absences, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return vacation.Balance{}, err
	}
	return s.vacationBalance(ctx, userID, absences)
}

func (s *Service) vacationBalance(ctx context.Context, userID string, absences []leave.AbsenceRecord) (vacation.Balance, error) {
	var hire *leave.Date
	profile, err := s.Profiles.Profile(ctx, userID)
	switch {
	case err == nil:
		hire = profile.HireDate
	case !leave.IsNotFound(err):
		return vacation.Balance{}, err
	}

	asOf := s.today()
	src := s.balanceSource(absences, hire, asOf)
	bal := src.Balance(asOf)

	// Reserved days come from the pending scan regardless of source;
	// the ledger has no notion of holds.
	if bal.Basis == vacation.BasisServerLedger {
		pending := (&vacation.ClientComputed{
			Absences: absences,
			HireDate: hire,
			Rules:    s.Rules,
			Settings: s.Settings,
		}).Balance(asOf).ReservedThisYear
		bal.ReservedThisYear = pending
		bal.Available = bal.Available.Sub(pending).ClampZero()
	}
	return bal, nil
}

func (s *Service) balanceSource(absences []leave.AbsenceRecord, hire *leave.Date, asOf leave.Date) vacation.Source {
	if hire != nil && !hire.IsZero() {
		ledger := vacation.BuildLedger(absences, vacation.LedgerConfig{
			HireDate: hire,
			Rules:    s.Rules,
			Mode:     s.Settings.CountMode,
		}, asOf)
		return &vacation.ServerLedger{Ledger: ledger}
	}
	return &vacation.ClientComputed{
		Absences: absences,
		HireDate: hire,
		Rules:    s.Rules,
		Settings: s.Settings,
	}
}

// Stats computes per-bucket balance stats for a user over a year or a
// single month of it.
func (s *Service) Stats(ctx context.Context, userID string, year int, month *time.Month) (map[policy.BalanceKey]*balances.Stats, error) {
	absences, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.aggregator().StatsByKey(absences, year, month), nil
}

// History returns the per-record export rows for a user.
func (s *Service) History(ctx context.Context, userID string) ([]balances.HistoryRow, error) {
	absences, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.aggregator().History(absences), nil
}
