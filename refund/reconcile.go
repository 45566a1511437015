// Package refund reconciles original-transaction tender instruments
// against the refund due on the current transaction: which instruments
// can still take a refund, for how much, and which must be routed
// through substitute (mapped) tender types.
package refund

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/storekit/tender/money"
	"github.com/storekit/tender/state"
	"github.com/storekit/tender/tender"
)

// Kind tags a reconciliation record.
type Kind int

const (
	// KindOriginal is an instrument from a prior transaction,
	// referenced when tied to a visible return line.
	KindOriginal Kind = iota
	// KindMapped is a synthesized substitute tender the refund must be
	// routed through instead of the original instrument.
	KindMapped
)

// Record is one refundable unit derived from original transactions.
type Record struct {
	Kind       Kind
	Referenced bool // meaningful for KindOriginal only

	TenderID string
	Type     string
	Subtype  string
	Auth     tender.AuthCategory

	Amount             money.Money // original tendered amount, mapped: summed over sources
	Adjustment         money.Money
	RefundedAmount     money.Money // this session
	PreviouslyRefunded money.Money
	References         []state.LineReference

	// owning original transaction
	TransactionID string
	// mapped only: original tender ids folded into this record
	SourceTenderIDs []string
}

// TransactionResult is the reconciliation outcome for one original
// transaction, ordered referenced, unreferenced, mapped.
type TransactionResult struct {
	ReferenceID  string
	ReturnTotal  money.Money
	Referenced   []Record
	Unreferenced []Record
	Mapped       []Record
}

func (r TransactionResult) Records() []Record {
	out := make([]Record, 0, len(r.Referenced)+len(r.Unreferenced)+len(r.Mapped))
	out = append(out, r.Referenced...)
	out = append(out, r.Unreferenced...)
	out = append(out, r.Mapped...)
	return out
}

// Reconcile classifies every refund-allowed instrument of every
// original transaction and expands configured substitute tenders.
// Deterministic: identical inputs yield structurally identical output.
// Missing original-transaction data yields an empty result.
func Reconcile(reg *tender.Registry, eligible []*tender.Definition, txs []state.OriginalTransaction, refundDue money.Money) []TransactionResult {
	if len(txs) == 0 {
		return nil
	}
	cur := refundDue.Currency()
	eligibleByID := make(map[string]*tender.Definition, len(eligible))
	for _, d := range eligible {
		eligibleByID[d.ID] = d
	}
	typeTotals := refundableTotalsByType(txs, cur)

	out := make([]TransactionResult, 0, len(txs))
	for ti := range txs {
		tx := &txs[ti]
		res := TransactionResult{ReferenceID: tx.ReferenceID, ReturnTotal: tx.ReturnTotal}
		mappedIndex := make(map[string]int)

		for _, ot := range tx.Tenders {
			if !ot.RefundAllowed {
				continue
			}
			rec := Record{
				Kind:               KindOriginal,
				TenderID:           ot.TenderID,
				Type:               ot.Type,
				Subtype:            ot.Subtype,
				Auth:               ot.Auth,
				Amount:             orZero(ot.Amount, cur),
				Adjustment:         orZero(ot.Adjustment, cur),
				RefundedAmount:     orZero(ot.RefundedAmount, cur),
				PreviouslyRefunded: orZero(ot.PreviouslyRefunded, cur),
				References:         ot.References,
				TransactionID:      tx.ReferenceID,
			}
			if d, ok := eligibleByID[ot.TenderID]; ok && d.Refund.Always() && len(ot.References) > 0 {
				rec.Referenced = true
				res.Referenced = append(res.Referenced, rec)
			} else if ot.Auth != tender.AuthLoyaltyVoucher {
				res.Unreferenced = append(res.Unreferenced, rec)
			}

			expandMapped(reg, &res, mappedIndex, rec, typeTotals[ot.Type])
		}

		// descending by original amount; strict comparator keeps
		// encounter order on equal amounts
		sort.SliceStable(res.Referenced, func(i, j int) bool {
			return res.Referenced[i].Amount.Cmp(res.Referenced[j].Amount) > 0
		})
		out = append(out, res)
	}
	return out
}

// expandMapped produces substitute records for one original
// instrument. A target id seen before folds into the existing record:
// amounts sum, references concatenate.
func expandMapped(reg *tender.Registry, res *TransactionResult, index map[string]int, src Record, typeTotal decimal.Decimal) {
	for _, target := range reg.RefundMapsFor(src.Type) {
		if !target.Allowed {
			continue
		}
		td, ok := reg.Get(target.TenderID)
		if !ok || !td.Refund.WhenMapped() {
			continue
		}
		if !target.InBounds(typeTotal) {
			continue
		}

		if i, ok := index[target.TenderID]; ok {
			m := &res.Mapped[i]
			m.Amount = m.Amount.Add(src.Amount)
			m.Adjustment = m.Adjustment.Add(src.Adjustment)
			m.RefundedAmount = m.RefundedAmount.Add(src.RefundedAmount)
			m.PreviouslyRefunded = m.PreviouslyRefunded.Add(src.PreviouslyRefunded)
			m.References = append(m.References, src.References...)
			m.SourceTenderIDs = append(m.SourceTenderIDs, src.TenderID)
			continue
		}
		index[target.TenderID] = len(res.Mapped)
		res.Mapped = append(res.Mapped, Record{
			Kind:               KindMapped,
			TenderID:           td.ID,
			Type:               td.Type,
			Subtype:            td.Subtype,
			Auth:               td.Auth,
			Amount:             src.Amount,
			Adjustment:         src.Adjustment,
			RefundedAmount:     src.RefundedAmount,
			PreviouslyRefunded: src.PreviouslyRefunded,
			References:         append([]state.LineReference(nil), src.References...),
			TransactionID:      src.TransactionID,
			SourceTenderIDs:    []string{src.TenderID},
		})
	}
}

// refundableTotalsByType sums amount+adjustment-previouslyRefunded per
// original tender type across all transactions. Mapping bounds are
// checked against these totals, not single lines.
func refundableTotalsByType(txs []state.OriginalTransaction, cur string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for ti := range txs {
		for _, ot := range txs[ti].Tenders {
			if !ot.RefundAllowed {
				continue
			}
			line := orZero(ot.Amount, cur).
				Add(orZero(ot.Adjustment, cur)).
				Sub(orZero(ot.PreviouslyRefunded, cur))
			totals[ot.Type] = totals[ot.Type].Add(line.Amount())
		}
	}
	return totals
}

// Flatten returns all records across transactions in final order.
func Flatten(results []TransactionResult) []Record {
	out := make([]Record, 0, 8)
	for _, r := range results {
		out = append(out, r.Records()...)
	}
	return out
}

// Unreferenced returns only the unreferenced original records.
func Unreferenced(results []TransactionResult) []Record {
	out := make([]Record, 0, 4)
	for _, r := range results {
		out = append(out, r.Unreferenced...)
	}
	return out
}

// orZero substitutes a typed zero for the zero Money value so that
// optional snapshot fields do not trip the currency guard.
func orZero(m money.Money, cur string) money.Money {
	if m.Currency() == "" {
		return money.Zero(cur)
	}
	return m
}
