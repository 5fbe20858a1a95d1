// Package store provides an in-memory implementation of the leave
// persistence interfaces, for tests and local development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lllhub/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	records  map[string]leave.AbsenceRecord
	profiles map[string]leave.Profile
}

func NewMemory() *Memory {
	return &Memory{
		records:  make(map[string]leave.AbsenceRecord),
		profiles: make(map[string]leave.Profile),
	}
}

var _ leave.AbsenceStore = (*Memory)(nil)
var _ leave.ProfileStore = (*Memory)(nil)

// Create inserts a record, enforcing the live-range exclusion the SQLite
// store enforces with a trigger.
func (m *Memory) Create(_ context.Context, rec leave.AbsenceRecord) (leave.AbsenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, exists := m.records[rec.ID]; exists {
		return leave.AbsenceRecord{}, fmt.Errorf("record %s already exists", rec.ID)
	}
	if rec.Status == "" {
		rec.Status = leave.StatusPending
	}
	if err := m.checkExclusionLocked(rec); err != nil {
		return leave.AbsenceRecord{}, err
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *Memory) Update(_ context.Context, rec leave.AbsenceRecord) (leave.AbsenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[rec.ID]
	if !ok {
		return leave.AbsenceRecord{}, leave.ErrRecordNotFound
	}
	if current.Status != leave.StatusPending {
		return leave.AbsenceRecord{}, leave.ErrNotPending
	}

	updated := current
	updated.From = rec.From
	updated.To = rec.To
	updated.Type = rec.Type
	updated.Subtype = rec.Subtype
	updated.Hours = rec.Hours
	updated.Note = rec.Note
	if err := m.checkExclusionLocked(updated); err != nil {
		return leave.AbsenceRecord{}, err
	}

	updated.UpdatedAt = time.Now().UTC()
	m.records[updated.ID] = updated
	return updated, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return leave.ErrRecordNotFound
	}
	if rec.Status != leave.StatusPending {
		return leave.ErrNotPending
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (leave.AbsenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return leave.AbsenceRecord{}, leave.ErrRecordNotFound
	}
	return rec, nil
}

func (m *Memory) ListByUser(_ context.Context, userID string) ([]leave.AbsenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []leave.AbsenceRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			result = append(result, rec)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *Memory) ListAll(_ context.Context) ([]leave.AbsenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]leave.AbsenceRecord, 0, len(m.records))
	for _, rec := range m.records {
		result = append(result, rec)
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *Memory) SetStatus(_ context.Context, id string, next leave.Status, actorID string, at time.Time) (leave.AbsenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return leave.AbsenceRecord{}, leave.ErrRecordNotFound
	}
	if !rec.Status.CanTransitionTo(next) {
		return leave.AbsenceRecord{}, &leave.TransitionError{RecordID: id, From: rec.Status, To: next}
	}

	rec.Status = next
	rec.UpdatedAt = at
	if next == leave.StatusPending {
		rec.DecidedBy = ""
		rec.DecidedAt = nil
	} else {
		rec.DecidedBy = actorID
		decidedAt := at
		rec.DecidedAt = &decidedAt
	}
	m.records[id] = rec
	return rec, nil
}

// checkExclusionLocked rejects writes that would leave two live records of
// one user with intersecting ranges.
func (m *Memory) checkExclusionLocked(rec leave.AbsenceRecord) error {
	if !rec.Status.IsLive() {
		return nil
	}
	for _, other := range m.records {
		if other.ID == rec.ID || other.UserID != rec.UserID || !other.Status.IsLive() {
			continue
		}
		if leave.RangesOverlap(rec.From, rec.To, other.From, other.To) {
			conflict := other
			return &leave.OverlapError{UserID: rec.UserID, From: rec.From, To: rec.To, Conflict: &conflict}
		}
	}
	return nil
}

func sortNewestFirst(recs []leave.AbsenceRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})
}

// =============================================================================
// PROFILES
// =============================================================================

func (m *Memory) Profile(_ context.Context, userID string) (leave.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return leave.Profile{}, leave.ErrProfileNotFound
	}
	return p, nil
}

func (m *Memory) SaveProfile(_ context.Context, p leave.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	return nil
}

func (m *Memory) ListProfiles(_ context.Context) ([]leave.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]leave.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}
