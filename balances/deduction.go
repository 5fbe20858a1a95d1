package balances

import (
	"github.com/lllhub/leave-engine/leave"
	"github.com/lllhub/leave-engine/policy"
)

// Deduction is what approving one absence would debit.
type Deduction struct {
	Key    policy.BalanceKey
	Unit   leave.Unit
	Amount leave.Amount

	// Deducts is false for untracked policies such as sick leave.
	Deducts bool
}

// AmountFor prices one record under an already-resolved definition.
func (a Aggregator) AmountFor(rec leave.AbsenceRecord, def *policy.Definition) leave.Amount {
	return a.recordAmount(rec, def)
}

// DeductionFor resolves a record against the catalog and prices it
// under the policy's own counting strategy. Returns ErrPolicyNotFound
// when no catalog entry matches.
func (a Aggregator) DeductionFor(rec leave.AbsenceRecord) (Deduction, error) {
	def := a.Catalog.Lookup(rec.Type, rec.Subtype)
	if def == nil {
		return Deduction{}, leave.ErrPolicyNotFound
	}
	if !def.Deducts {
		return Deduction{Unit: def.Unit, Amount: leave.NewAmountFromInt(0, def.Unit)}, nil
	}
	return Deduction{
		Key:     def.DeductsFrom,
		Unit:    def.Unit,
		Amount:  a.recordAmount(rec, def),
		Deducts: true,
	}, nil
}
