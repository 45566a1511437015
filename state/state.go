// Package state holds the typed transaction snapshot the engine
// computes from, and reads the engine configuration.
//
// The snapshot is a value: recomputed fresh by the caller on every
// relevant transaction change and treated as immutable here.
package state

import (
	"github.com/storekit/tender/money"
	"github.com/storekit/tender/tender"
)

// LineKind classifies a display line of the current transaction.
type LineKind int

const (
	LineSale LineKind = iota
	// LineReturnLinked references a specific prior transaction line.
	LineReturnLinked
	// LineReturnUnlinked is a return without receipt linkage.
	LineReturnUnlinked
	LineCancel
)

type DisplayLine struct {
	Kind                LineKind
	LinkedTransactionID string
	LinkedLineNumber    int
}

// LineReference is the finest-grained unit of refundable value.
// The same transaction may be referenced multiple times across split
// originals; references must be merged by transaction id before use.
type LineReference struct {
	TransactionID    string
	LineNumber       int
	RefundableAmount money.Money
}

type AdjustmentKind int

const (
	AdjustmentNone AdjustmentKind = iota
	AdjustmentCurrencyRounding
)

// OriginalTender is one instrument used on a prior transaction.
type OriginalTender struct {
	TenderID           string
	Type               string
	Subtype            string
	Auth               tender.AuthCategory
	Amount             money.Money // originally tendered
	RefundedAmount     money.Money // refunded in this session
	PreviouslyRefunded money.Money // refunded before this session
	Adjustment         money.Money
	AdjustmentKind     AdjustmentKind
	RefundAllowed      bool
	References         []LineReference
}

// OriginalTransaction aggregates the instruments of one prior
// transaction being returned against.
type OriginalTransaction struct {
	ReferenceID string
	ReturnTotal money.Money
	Tenders     []OriginalTender
}

// Snapshot is the engine's read-only view of the current transaction.
type Snapshot struct {
	BalanceDue           money.Money
	Lines                []DisplayLine
	OriginalTransactions []OriginalTransaction
}

func (s *Snapshot) IsRefund() bool { return s.BalanceDue.Sign() < 0 }

// RefundContext classifies the return from display lines: linked
// return lines select the with-original subset, unlinked returns and
// cancellations the without-original subset. A refund with no
// classifying lines activates both.
func (s *Snapshot) RefundContext() tender.Context {
	var c tender.Context
	for _, line := range s.Lines {
		switch line.Kind {
		case LineReturnLinked:
			if line.LinkedTransactionID != "" {
				c |= tender.ContextRefundWith
			} else {
				c |= tender.ContextRefundWithout
			}
		case LineReturnUnlinked, LineCancel:
			c |= tender.ContextRefundWithout
		}
	}
	if c == 0 {
		c = tender.ContextRefundWith | tender.ContextRefundWithout
	}
	return c
}

func (s *Snapshot) FindTransaction(id string) *OriginalTransaction {
	for i := range s.OriginalTransactions {
		if s.OriginalTransactions[i].ReferenceID == id {
			return &s.OriginalTransactions[i]
		}
	}
	return nil
}
