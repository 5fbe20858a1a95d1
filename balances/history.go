package balances

import (
	"sort"

	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/policy"
)

// HistoryRow is one absence rendered for detail tables and CSV export,
// carrying the same policy resolution and amount the stats fold uses.
type HistoryRow struct {
	Record leave.AbsenceRecord

	PolicyKey string
	Key       policy.BalanceKey
	Deducts   bool
	Amount    leave.Amount
}

// History builds per-record rows for every pending or approved absence,
// sorted by (start date, id) descending. Records with no catalog match
// are included with Deducts false so exports stay complete.
func (a Aggregator) History(absences []leave.AbsenceRecord) []HistoryRow {
	rows := make([]HistoryRow, 0, len(absences))
	for _, rec := range absences {
		if rec.Status != leave.StatusApproved && rec.Status != leave.StatusPending {
			continue
		}
		row := HistoryRow{Record: rec}
		if def := a.Catalog.Lookup(rec.Type, rec.Subtype); def != nil {
			row.PolicyKey = def.Key
			row.Deducts = def.Deducts
			if def.Deducts {
				row.Key = def.DeductsFrom
				row.Amount = a.recordAmount(rec, def)
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		ki := rows[i].Record.From.ISO() + rows[i].Record.ID
		kj := rows[j].Record.From.ISO() + rows[j].Record.ID
		return ki > kj
	})
	return rows
}
