/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements leave.AbsenceStore and leave.ProfileStore on SQLite. The
  same patterns apply to PostgreSQL with minor dialect differences
  (the overlap triggers would become an exclusion constraint there).

KEY TABLES:
  absences: one row per absence request, mutated only while pending or
            by a status transition
  profiles: identity fields the engine consumes (hire date, role)

OVERLAP ENFORCEMENT:
  The authoritative no-overlap guarantee lives here, not in the
  validation layer. BEFORE INSERT and BEFORE UPDATE triggers abort any
  write that would give a user two pending/approved absences with
  intersecting date ranges. Two concurrent submissions can both pass
  the advisory check upstream; only one survives the trigger.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: interface definitions
  - leave/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/lllhub/leave-engine/leave"
)

// overlapAbortMessage is raised by the exclusion triggers and mapped
// back to leave.ErrOverlap.
const overlapAbortMessage = "absence overlap"

// timeLayout is RFC3339 with a fixed-width fraction so stored
// timestamps sort correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

var (
	_ leave.AbsenceStore = (*Store)(nil)
	_ leave.ProfileStore = (*Store)(nil)
)

// New opens a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		subtype TEXT NOT NULL DEFAULT '',
		date_from TEXT NOT NULL,
		date_to TEXT NOT NULL,
		hours TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		decided_by TEXT NOT NULL DEFAULT '',
		decided_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (date_to >= date_from),
		CHECK (status IN ('pending', 'approved', 'rejected'))
	);

	CREATE INDEX IF NOT EXISTS idx_absences_user
		ON absences(user_id, date_from DESC);
	CREATE INDEX IF NOT EXISTS idx_absences_user_status
		ON absences(user_id, status);

	-- Authoritative no-overlap guarantee. Two live (pending/approved)
	-- absences of one user must not have intersecting [from, to]
	-- ranges. ISO dates compare correctly as text.
	CREATE TRIGGER IF NOT EXISTS absences_no_overlap_insert
	BEFORE INSERT ON absences
	WHEN NEW.status IN ('pending', 'approved')
	BEGIN
		SELECT RAISE(ABORT, '` + overlapAbortMessage + `')
		WHERE EXISTS (
			SELECT 1 FROM absences
			WHERE user_id = NEW.user_id
			  AND id != NEW.id
			  AND status IN ('pending', 'approved')
			  AND date_from <= NEW.date_to
			  AND NEW.date_from <= date_to
		);
	END;

	CREATE TRIGGER IF NOT EXISTS absences_no_overlap_update
	BEFORE UPDATE ON absences
	WHEN NEW.status IN ('pending', 'approved')
	BEGIN
		SELECT RAISE(ABORT, '` + overlapAbortMessage + `')
		WHERE EXISTS (
			SELECT 1 FROM absences
			WHERE user_id = NEW.user_id
			  AND id != NEW.id
			  AND status IN ('pending', 'approved')
			  AND date_from <= NEW.date_to
			  AND NEW.date_from <= date_to
		);
	END;

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		hire_date TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ABSENCE STORE
// =============================================================================

func (s *Store) Create(ctx context.Context, rec leave.AbsenceRecord) (leave.AbsenceRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = leave.StatusPending
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO absences
			(id, user_id, user_name, type, subtype, date_from, date_to,
			 hours, status, note, decided_by, decided_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.UserName, string(rec.Type), string(rec.Subtype),
		rec.From.ISO(), rec.To.ISO(), rec.Hours.String(), string(rec.Status),
		rec.Note, rec.DecidedBy, nullableTime(rec.DecidedAt),
		now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return leave.AbsenceRecord{}, s.mapWriteError(ctx, err, rec)
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, rec leave.AbsenceRecord) (leave.AbsenceRecord, error) {
	existing, err := s.Get(ctx, rec.ID)
	if err != nil {
		return leave.AbsenceRecord{}, err
	}
	if existing.Status != leave.StatusPending {
		return leave.AbsenceRecord{}, fmt.Errorf("record %s: %w", rec.ID, leave.ErrNotPending)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE absences
		SET type = ?, subtype = ?, date_from = ?, date_to = ?,
		    hours = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		string(rec.Type), string(rec.Subtype), rec.From.ISO(), rec.To.ISO(),
		rec.Hours.String(), rec.Note, now.Format(timeLayout), rec.ID)
	if err != nil {
		return leave.AbsenceRecord{}, s.mapWriteError(ctx, err, rec)
	}
	return s.Get(ctx, rec.ID)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status != leave.StatusPending {
		return fmt.Errorf("record %s: %w", id, leave.ErrNotPending)
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM absences WHERE id = ?`, id)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (leave.AbsenceRecord, error) {
	row := s.db.QueryRowContext(ctx, selectAbsence+` WHERE id = ?`, id)
	rec, err := scanAbsence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.AbsenceRecord{}, fmt.Errorf("record %s: %w", id, leave.ErrRecordNotFound)
	}
	return rec, err
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]leave.AbsenceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		selectAbsence+` WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectAbsences(rows)
}

func (s *Store) ListAll(ctx context.Context) ([]leave.AbsenceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		selectAbsence+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectAbsences(rows)
}

func (s *Store) SetStatus(ctx context.Context, id string, next leave.Status, actorID string, at time.Time) (leave.AbsenceRecord, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return leave.AbsenceRecord{}, err
	}
	if !existing.Status.CanTransitionTo(next) {
		return leave.AbsenceRecord{}, &leave.TransitionError{RecordID: id, From: existing.Status, To: next}
	}

	decidedBy := actorID
	var decidedAt *time.Time
	if next == leave.StatusPending {
		// Revert clears the decision stamp.
		decidedBy = ""
	} else {
		at = at.UTC()
		decidedAt = &at
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE absences
		SET status = ?, decided_by = ?, decided_at = ?, updated_at = ?
		WHERE id = ?`,
		string(next), decidedBy, nullableTime(decidedAt),
		time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return leave.AbsenceRecord{}, s.mapWriteError(ctx, err, existing)
	}
	return s.Get(ctx, id)
}

// mapWriteError translates trigger aborts into the overlap error shape
// the rest of the engine understands, looking up the conflicting record
// for context.
func (s *Store) mapWriteError(ctx context.Context, err error, rec leave.AbsenceRecord) error {
	if !strings.Contains(err.Error(), overlapAbortMessage) {
		return err
	}
	overlapErr := &leave.OverlapError{UserID: rec.UserID, From: rec.From, To: rec.To}
	if existing, lerr := s.ListByUser(ctx, rec.UserID); lerr == nil {
		overlapErr.Conflict = leave.FindOverlapping(existing, rec.From, rec.To, leave.OverlapOptions{IgnoreID: rec.ID})
	}
	return overlapErr
}

// =============================================================================
// PROFILE STORE
// =============================================================================

func (s *Store) Profile(ctx context.Context, userID string) (leave.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, full_name, email, role, hire_date
		FROM profiles WHERE user_id = ?`, userID)

	var p leave.Profile
	var role string
	var hire sql.NullString
	err := row.Scan(&p.UserID, &p.FullName, &p.Email, &role, &hire)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Profile{}, fmt.Errorf("profile %s: %w", userID, leave.ErrProfileNotFound)
	}
	if err != nil {
		return leave.Profile{}, err
	}
	p.Role = leave.Role(role)
	if hire.Valid && hire.String != "" {
		d, perr := leave.ParseDate(hire.String)
		if perr != nil {
			return leave.Profile{}, fmt.Errorf("profile %s: bad hire date: %w", userID, perr)
		}
		p.HireDate = &d
	}
	return p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p leave.Profile) error {
	var hire interface{}
	if p.HireDate != nil && !p.HireDate.IsZero() {
		hire = p.HireDate.ISO()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, full_name, email, role, hire_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			role = excluded.role,
			hire_date = excluded.hire_date`,
		p.UserID, p.FullName, p.Email, string(p.Role), hire)
	return err
}

func (s *Store) ListProfiles(ctx context.Context) ([]leave.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, full_name, email, role, hire_date
		FROM profiles ORDER BY full_name, user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Profile
	for rows.Next() {
		var p leave.Profile
		var role string
		var hire sql.NullString
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Email, &role, &hire); err != nil {
			return nil, err
		}
		p.Role = leave.Role(role)
		if hire.Valid && hire.String != "" {
			d, perr := leave.ParseDate(hire.String)
			if perr != nil {
				return nil, fmt.Errorf("profile %s: bad hire date: %w", p.UserID, perr)
			}
			p.HireDate = &d
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// ROW MAPPING
// =============================================================================

const selectAbsence = `
	SELECT id, user_id, user_name, type, subtype, date_from, date_to,
	       hours, status, note, decided_by, decided_at, created_at, updated_at
	FROM absences`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAbsence(row rowScanner) (leave.AbsenceRecord, error) {
	var rec leave.AbsenceRecord
	var typ, subtype, from, to, hours, status string
	var decidedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&rec.ID, &rec.UserID, &rec.UserName, &typ, &subtype,
		&from, &to, &hours, &status, &rec.Note, &rec.DecidedBy,
		&decidedAt, &createdAt, &updatedAt)
	if err != nil {
		return leave.AbsenceRecord{}, err
	}

	rec.Type = leave.AbsenceType(typ)
	rec.Subtype = leave.LicenseSubtype(subtype)
	rec.Status = leave.Status(status)

	if rec.From, err = leave.ParseDate(from); err != nil {
		return leave.AbsenceRecord{}, fmt.Errorf("record %s: bad date_from: %w", rec.ID, err)
	}
	if rec.To, err = leave.ParseDate(to); err != nil {
		return leave.AbsenceRecord{}, fmt.Errorf("record %s: bad date_to: %w", rec.ID, err)
	}
	if rec.Hours, err = decimal.NewFromString(hours); err != nil {
		return leave.AbsenceRecord{}, fmt.Errorf("record %s: bad hours: %w", rec.ID, err)
	}
	if decidedAt.Valid {
		t, terr := time.Parse(time.RFC3339Nano, decidedAt.String)
		if terr != nil {
			return leave.AbsenceRecord{}, fmt.Errorf("record %s: bad decided_at: %w", rec.ID, terr)
		}
		rec.DecidedAt = &t
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return leave.AbsenceRecord{}, fmt.Errorf("record %s: bad created_at: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return leave.AbsenceRecord{}, fmt.Errorf("record %s: bad updated_at: %w", rec.ID, err)
	}
	return rec, nil
}

func collectAbsences(rows *sql.Rows) ([]leave.AbsenceRecord, error) {
	defer rows.Close()
	var out []leave.AbsenceRecord
	for rows.Next() {
		rec, err := scanAbsence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
