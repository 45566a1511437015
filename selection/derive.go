// Package selection turns catalog groups and reconciliation records
// into a bounded, ordered list of selectable tender actions.
package selection

import (
	"github.com/storekit/tender/money"
	"github.com/storekit/tender/refund"
	"github.com/storekit/tender/state"
	"github.com/storekit/tender/tender"
)

// ItemKind says what a button stands for.
type ItemKind int

const (
	ItemGroup ItemKind = iota
	ItemOriginal
	ItemMapped
)

// Item is one rendering-bound tender action.
type Item struct {
	Kind      ItemKind
	Auth      tender.AuthCategory
	TenderIDs []string
	Label     string
	// Secondary is the rounded / refundable amount label, empty when
	// no amount annotation applies.
	Secondary string
	Disabled  bool
}

// Availability carries the caller-computed disablement flags per
// button category. Zero value means everything is available.
type Availability struct {
	PaymentDeviceDown bool
	NonIntegratedDown bool
	WalletDown        bool
	// GiftDown covers gift devices and stored value card services.
	GiftDown        bool
	CertificateDown bool
	LoyaltyDown     bool
	PlainDown       bool
}

func (a Availability) Down(c tender.AuthCategory) bool {
	switch c {
	case tender.AuthPaymentDevice:
		return a.PaymentDeviceDown
	case tender.AuthNonIntegratedDevice:
		return a.NonIntegratedDown
	case tender.AuthWallet:
		return a.WalletDown
	case tender.AuthGiftDevice, tender.AuthStoredValueCard:
		return a.GiftDown
	case tender.AuthStoredValueCertificate:
		return a.CertificateDown
	case tender.AuthLoyaltyVoucher:
		return a.LoyaltyDown
	}
	return a.PlainDown
}

type Options struct {
	// MaxButtons <= 0 falls back to the registry's configured budget.
	MaxButtons int
	// ForeignFocusTenderID, when set, shows only that tender's group.
	ForeignFocusTenderID string
	Availability         Availability
	// Due is the amount outstanding, negative for refunds.
	Due money.Money
	// Transactions back the refundable-amount computation.
	Transactions []state.OriginalTransaction
}

type Result struct {
	Main           []Item
	OverflowNeeded bool
	Overflow       []Item
}

// Derive builds the button list. records is the flattened
// reconciliation output (empty for sales). The button budget is
// max(maxButtons, originalCount+1); when groups plus original buttons
// exceed it, the last slot is reserved for an "other tenders" action
// and surplus groups move to Overflow.
func Derive(reg *tender.Registry, groups []tender.Group, records []refund.Record, opt Options) Result {
	groups = dropMappedMembers(groups, records)

	if opt.ForeignFocusTenderID != "" {
		for _, g := range groups {
			if groupContains(g, opt.ForeignFocusTenderID) {
				return Result{Main: []Item{groupItem(reg, g, opt)}}
			}
		}
	}

	recordItems, originalCount := deriveRecordItems(reg, records, opt)

	budget := opt.MaxButtons
	if budget <= 0 {
		budget = reg.MaxButtons()
	}
	if originalCount+1 > budget {
		budget = originalCount + 1
	}

	res := Result{Main: recordItems}
	mainGroups := groups
	if len(groups)+originalCount > budget {
		keep := budget - 1 - originalCount
		if keep < 0 {
			keep = 0
		}
		mainGroups = groups[:keep]
		res.OverflowNeeded = true
		for _, g := range groups[keep:] {
			res.Overflow = append(res.Overflow, groupItem(reg, g, opt))
		}
	}
	for _, g := range mainGroups {
		res.Main = append(res.Main, groupItem(reg, g, opt))
	}
	return res
}

// dropMappedMembers removes original tender ids already represented by
// mapped records; a group left with no members disappears.
func dropMappedMembers(groups []tender.Group, records []refund.Record) []tender.Group {
	mapped := make(map[string]struct{})
	for _, rec := range records {
		if rec.Kind != refund.KindMapped {
			continue
		}
		for _, id := range rec.SourceTenderIDs {
			mapped[id] = struct{}{}
		}
	}
	if len(mapped) == 0 {
		return groups
	}
	out := make([]tender.Group, 0, len(groups))
	for _, g := range groups {
		kept := g
		kept.TenderIDs = nil
		for _, id := range g.TenderIDs {
			if _, ok := mapped[id]; !ok {
				kept.TenderIDs = append(kept.TenderIDs, id)
			}
		}
		if len(kept.TenderIDs) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// deriveRecordItems renders reconciliation records. A record whose
// rounded refundable balance is zero with no refund history is settled
// and produces no button; a record with history stays visible but
// disabled once fully refunded.
func deriveRecordItems(reg *tender.Registry, records []refund.Record, opt Options) ([]Item, int) {
	items := make([]Item, 0, len(records))
	originalCount := 0
	for _, rec := range records {
		refundable := refund.RefundableAmount(rec, opt.Due, opt.Transactions)
		display := refundable
		if rr, ok := reg.RoundedTenderFor(rec.TenderID, refundable); ok {
			display = rr.Rounded
		}

		if display.IsZero() && rec.PreviouslyRefunded.IsZero() && rec.RefundedAmount.IsZero() {
			continue
		}

		kind := ItemOriginal
		if rec.Kind == refund.KindMapped {
			kind = ItemMapped
		} else {
			originalCount++
		}
		label := rec.TenderID
		if d, ok := reg.Get(rec.TenderID); ok {
			label = d.DisplayLabel()
		}
		items = append(items, Item{
			Kind:      kind,
			Auth:      rec.Auth,
			TenderIDs: []string{rec.TenderID},
			Label:     label,
			Secondary: display.Format2(),
			Disabled:  opt.Availability.Down(rec.Auth) || refund.FullyRefunded(rec, opt.Transactions),
		})
	}
	return items, originalCount
}

func groupItem(reg *tender.Registry, g tender.Group, opt Options) Item {
	item := Item{
		Kind:      ItemGroup,
		Auth:      g.Auth,
		TenderIDs: g.TenderIDs,
		Label:     g.Name,
		Disabled:  opt.Availability.Down(g.Auth),
	}
	if len(g.TenderIDs) == 1 && opt.Due.Currency() != "" {
		if rr, ok := reg.RoundedTenderFor(g.TenderIDs[0], opt.Due.Abs()); ok {
			item.Secondary = rr.Rounded.Format2()
		}
	}
	return item
}

func groupContains(g tender.Group, id string) bool {
	for _, t := range g.TenderIDs {
		if t == id {
			return true
		}
	}
	return false
}
