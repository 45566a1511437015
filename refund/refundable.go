package refund

import (
	"github.com/storekit/tender/money"
	"github.com/storekit/tender/state"
)

// RefundableAmount computes how much of the instrument can still be
// refunded right now. The result is bounded by all three of: the
// remaining refund due, the original transaction's returned total, and
// the instrument's own remaining balance.
//
// refundDue must carry a currency; calling without one is a
// programming error.
func RefundableAmount(rec Record, refundDue money.Money, txs []state.OriginalTransaction) money.Money {
	cur := refundDue.Currency()
	if cur == "" {
		panic("refund: refundable amount needs a currency on refund due")
	}
	due := refundDue.Abs()
	zero := money.Zero(cur)

	total := zero
	for _, ref := range mergeReferences(rec) {
		tx := findTransaction(txs, ref.TransactionID)
		if tx == nil {
			continue
		}
		returnTotal := orZero(tx.ReturnTotal, cur).Abs()

		originalAmount := returnTotal.Min(orZero(ref.RefundableAmount, cur).Add(rec.Adjustment))
		remaining := originalAmount
		if rec.Kind != KindMapped {
			// mapped tenders track refund status by reference list and
			// subtract nothing here
			remaining = originalAmount.Sub(rec.PreviouslyRefunded)
		}

		contribution := due.Min(returnTotal).Min(remaining)
		if contribution.Sign() < 0 {
			contribution = zero
		}
		// re-bound after every addition so several prior transactions
		// cannot overshoot the refund due
		total = total.Add(contribution).Min(due)
	}
	return total
}

// FullyRefunded reports whether the instrument has no refund capacity
// left. Mapped tenders are done once cumulative refunds reach the
// adjusted original amount or the refunded amount reaches the source
// transaction's returned total.
func FullyRefunded(rec Record, txs []state.OriginalTransaction) bool {
	adjusted := rec.Amount.Add(rec.Adjustment)
	cumulative := rec.RefundedAmount.Add(rec.PreviouslyRefunded)
	if cumulative.Cmp(adjusted) >= 0 {
		return true
	}
	if rec.Kind == KindMapped {
		if tx := findTransaction(txs, rec.TransactionID); tx != nil {
			if rec.RefundedAmount.Cmp(orZero(tx.ReturnTotal, rec.Amount.Currency()).Abs()) >= 0 {
				return true
			}
		}
	}
	return false
}

// mergeReferences folds duplicate references to the same prior
// transaction into one, summing refundable amounts. Encounter order of
// first occurrences is kept. A record without explicit references acts
// as a single reference to its owning transaction for the full
// original amount.
func mergeReferences(rec Record) []state.LineReference {
	if len(rec.References) == 0 {
		return []state.LineReference{{
			TransactionID:    rec.TransactionID,
			RefundableAmount: rec.Amount,
		}}
	}
	index := make(map[string]int, len(rec.References))
	merged := make([]state.LineReference, 0, len(rec.References))
	for _, ref := range rec.References {
		if i, ok := index[ref.TransactionID]; ok {
			merged[i].RefundableAmount = merged[i].RefundableAmount.Add(ref.RefundableAmount)
			continue
		}
		index[ref.TransactionID] = len(merged)
		merged = append(merged, ref)
	}
	return merged
}

func findTransaction(txs []state.OriginalTransaction, id string) *state.OriginalTransaction {
	for i := range txs {
		if txs[i].ReferenceID == id {
			return &txs[i]
		}
	}
	return nil
}
