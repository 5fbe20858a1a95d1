package vacation

import (
	"github.com/lllhub/leave-engine/leave"
)

// =============================================================================
// BUCKET LEDGER
// =============================================================================

// Bucket is one annual vacation grant cycle.
type Bucket struct {
	GrantDate leave.Date
	ExpiresAt leave.Date
	Granted   leave.Amount
	Used      leave.Amount
	Remaining leave.Amount
}

// Active reports whether the bucket covers the reference date: granted
// on or before it, expiring strictly after it.
func (b Bucket) Active(asOf leave.Date) bool {
	return b.GrantDate.BeforeOrEqual(asOf) && b.ExpiresAt.After(asOf)
}

// Ledger is the precomputed FIFO view of a user's vacation grants.
type Ledger struct {
	Available leave.Amount
	Granted   leave.Amount
	Used      leave.Amount

	// NextExpiration is the earliest expiry among buckets with days
	// still remaining, nil when nothing is at risk.
	NextExpiration *leave.Date

	// Buckets in ascending grant-date order.
	Buckets []Bucket
}

// CurrentBucket returns the active bucket with the most recent grant
// date, or nil when none covers the reference date.
func (l Ledger) CurrentBucket(asOf leave.Date) *Bucket {
	var current *Bucket
	for i := range l.Buckets {
		b := &l.Buckets[i]
		if !b.Active(asOf) {
			continue
		}
		if current == nil || b.GrantDate.After(current.GrantDate) {
			current = b
		}
	}
	return current
}
