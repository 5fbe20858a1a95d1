/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All sentinel and structured errors in one place. Other packages wrap
  these with fmt.Errorf("...: %w", err) and callers branch with errors.Is.

ERROR CATEGORIES:
  1. Input errors - invalid ranges, hours, unknown policies
  2. Conflict errors - overlapping requests, invalid status transitions
  3. Lookup errors - missing records or profiles

USAGE:
  if errors.Is(err, leave.ErrOverlap) {
      var oe *leave.OverlapError
      if errors.As(err, &oe) { ... oe.Conflict ... }
  }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a request's end date precedes its
	// start date, or an hour-denominated request spans more than one day.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidHours is returned when an hour-denominated request carries
	// a missing, zero, or negative hours value.
	ErrInvalidHours = errors.New("hours must be positive")

	// ErrPolicyNotFound is returned when no catalog entry resolves for a
	// (type, subtype) pair. Quota checks are impossible without a policy.
	ErrPolicyNotFound = errors.New("no policy for absence type")

	// ErrOverlap is returned when a request's range intersects a live
	// (pending or approved) record for the same user.
	ErrOverlap = errors.New("absence overlap")

	// ErrInsufficientBalance is returned when a request exceeds the
	// available balance for its policy.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotPending is returned when an operation that requires a pending
	// record (edit, delete, decide) targets a decided one.
	ErrNotPending = errors.New("record is not pending")

	// ErrInvalidTransition is returned on a status move the machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrRecordNotFound is returned when a referenced absence doesn't exist.
	ErrRecordNotFound = errors.New("absence record not found")

	// ErrProfileNotFound is returned when a referenced profile doesn't exist.
	ErrProfileNotFound = errors.New("profile not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverlapError reports which existing record blocks a request.
type OverlapError struct {
	UserID   string
	From     Date
	To       Date
	Conflict *AbsenceRecord
}

func (e *OverlapError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("absence overlap: [%s, %s] conflicts with %s record %s [%s, %s]",
			e.From, e.To, e.Conflict.Status, e.Conflict.ID, e.Conflict.From, e.Conflict.To)
	}
	return fmt.Sprintf("absence overlap: [%s, %s]", e.From, e.To)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// InsufficientBalanceError details a quota shortage.
type InsufficientBalanceError struct {
	UserID     string
	BalanceKey string
	Available  Amount
	Requested  Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance on %s: available %v, requested %v",
		e.BalanceKey, e.Available.Value, e.Requested.Value)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// TransitionError reports a forbidden status move.
type TransitionError struct {
	RecordID string
	From     Status
	To       Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("record %s: cannot transition %s -> %s", e.RecordID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is the caller's fault (4xx).
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrPolicyNotFound) ||
		errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrProfileNotFound)
}

// IsConflict reports whether the error should surface as an HTTP 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrInvalidTransition)
}
