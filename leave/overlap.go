package leave

// =============================================================================
// OVERLAP DETECTION - Advisory conflict check between absence ranges
// =============================================================================

// RangesOverlap reports whether two inclusive date ranges intersect.
// Closed-interval test: [aFrom,aTo] and [bFrom,bTo] overlap iff
// aFrom <= bTo && bFrom <= aTo. Adjacent ranges do not overlap.
func RangesOverlap(aFrom, aTo, bFrom, bTo Date) bool {
	return aFrom.BeforeOrEqual(bTo) && bFrom.BeforeOrEqual(aTo)
}

// OverlapOptions configures FindOverlapping.
type OverlapOptions struct {
	// IgnoreID skips one record, so an edit does not conflict with itself.
	IgnoreID string

	// Statuses filters which records can block. Defaults to the live
	// statuses (pending, approved); rejected records never block.
	Statuses []Status
}

// FindOverlapping returns the first record in input order whose range
// intersects [from, to], or nil when there is no conflict.
//
// This is a linear scan over one user's records, which number in the tens.
// It is advisory only: two concurrent submissions can both pass this check,
// so the persistence layer's exclusion constraint remains the authority.
func FindOverlapping(existing []AbsenceRecord, from, to Date, opts OverlapOptions) *AbsenceRecord {
	statuses := opts.Statuses
	if statuses == nil {
		statuses = []Status{StatusPending, StatusApproved}
	}

	for i := range existing {
		rec := &existing[i]
		if opts.IgnoreID != "" && rec.ID == opts.IgnoreID {
			continue
		}
		if !statusIn(rec.Status, statuses) {
			continue
		}
		if RangesOverlap(from, to, rec.From, rec.To) {
			return rec
		}
	}
	return nil
}

func statusIn(s Status, set []Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
