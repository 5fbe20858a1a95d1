/*
store.go - Persistence interfaces for absence records and profiles

PURPOSE:
  Defines the boundary between the calculation core and the database.
  Implementations: store/sqlite (production) and leave/store (in-memory,
  for tests).

THE AUTHORITATIVE OVERLAP GUARANTEE:
  FindOverlapping is advisory; two concurrent submissions can both pass
  it before either commits. Create and Update MUST therefore reject any
  write that would leave two live (pending/approved) records of one user
  with intersecting ranges, returning an error wrapping ErrOverlap. The
  SQLite implementation does this with a trigger; the memory store checks
  under its lock.

MUTATION RULES (mirroring the record lifecycle):
  - Create: inserts a pending record, assigning an ID when empty
  - Update: allowed only while pending
  - Delete: allowed only while pending
  - SetStatus: follows the status machine; a decision stamps the actor
    and time, a revert to pending clears them
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// ABSENCE STORE
// =============================================================================

// AbsenceStore persists absence records.
type AbsenceStore interface {
	// Create inserts a new record. A record with an empty ID gets one
	// assigned. Returns an error wrapping ErrOverlap when the range
	// intersects a live record of the same user.
	Create(ctx context.Context, rec AbsenceRecord) (AbsenceRecord, error)

	// Update replaces the mutable fields (range, type, subtype, hours,
	// note) of a pending record. Returns ErrNotPending for decided
	// records and an ErrOverlap-wrapping error on range conflicts.
	Update(ctx context.Context, rec AbsenceRecord) (AbsenceRecord, error)

	// Delete removes a pending record. Returns ErrNotPending otherwise.
	Delete(ctx context.Context, id string) error

	// Get returns a record by ID, or ErrRecordNotFound.
	Get(ctx context.Context, id string) (AbsenceRecord, error)

	// ListByUser returns one user's records, newest created first.
	ListByUser(ctx context.Context, userID string) ([]AbsenceRecord, error)

	// ListAll returns every record, newest created first. Owner views.
	ListAll(ctx context.Context) ([]AbsenceRecord, error)

	// SetStatus applies a status transition, stamping the deciding actor
	// and time on a decision and clearing them on a revert to pending.
	// Returns an error wrapping ErrInvalidTransition on forbidden moves.
	SetStatus(ctx context.Context, id string, next Status, actorID string, at time.Time) (AbsenceRecord, error)
}

// =============================================================================
// PROFILE STORE
// =============================================================================

// ProfileStore supplies the identity fields the engine consumes.
type ProfileStore interface {
	// Profile returns a user's profile, or ErrProfileNotFound.
	Profile(ctx context.Context, userID string) (Profile, error)

	// SaveProfile inserts or replaces a profile.
	SaveProfile(ctx context.Context, p Profile) error

	// ListProfiles returns all profiles, ordered by full name.
	ListProfiles(ctx context.Context) ([]Profile, error)
}
