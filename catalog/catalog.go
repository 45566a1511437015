// Package catalog selects the tenders and groups currently able to
// accept payment or refund for a transaction snapshot.
package catalog

import (
	"github.com/storekit/tender/log2"
	"github.com/storekit/tender/state"
	"github.com/storekit/tender/tender"
)

// ActiveTenders resolves the tender subset for the snapshot. Sales use
// the sale subset. Refunds concatenate the with-original and
// without-original subsets per display-line classification, first
// occurrence of a tender id wins.
func ActiveTenders(reg *tender.Registry, snap *state.Snapshot, log *log2.Log) []*tender.Definition {
	var parts [][]*tender.Definition
	if !snap.IsRefund() {
		parts = append(parts, reg.TendersFor(tender.ContextSale))
	} else {
		ctx := snap.RefundContext()
		if ctx&tender.ContextRefundWith != 0 {
			parts = append(parts, reg.TendersFor(tender.ContextRefundWith))
		}
		if ctx&tender.ContextRefundWithout != 0 {
			parts = append(parts, reg.TendersFor(tender.ContextRefundWithout))
		}
	}

	seen := make(map[string]struct{})
	out := make([]*tender.Definition, 0, 8)
	for _, subset := range parts {
		for _, d := range subset {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			if !reg.DeviceEligible(d.Auth) {
				log.Debugf("catalog: tender=%s device category=%s disabled", d.ID, d.Auth)
				continue
			}
			out = append(out, d)
		}
	}
	return out
}

// ActiveGroups mirrors the ActiveTenders with/without split for
// configured groups, de-duplicates identical groups by name, restricts
// members to active tenders, and wraps each ungrouped active tender in
// a singleton group so it stays selectable.
func ActiveGroups(reg *tender.Registry, snap *state.Snapshot, active []*tender.Definition) []tender.Group {
	activeByID := make(map[string]*tender.Definition, len(active))
	for _, d := range active {
		activeByID[d.ID] = d
	}

	var parts [][]tender.Group
	if !snap.IsRefund() {
		parts = append(parts, reg.GroupsFor(tender.ContextSale))
	} else {
		ctx := snap.RefundContext()
		if ctx&tender.ContextRefundWith != 0 {
			parts = append(parts, reg.GroupsFor(tender.ContextRefundWith))
		}
		if ctx&tender.ContextRefundWithout != 0 {
			parts = append(parts, reg.GroupsFor(tender.ContextRefundWithout))
		}
	}

	seenGroup := make(map[string]struct{})
	grouped := make(map[string]struct{})
	out := make([]tender.Group, 0, 8)
	for _, subset := range parts {
		for _, g := range subset {
			if _, ok := seenGroup[g.Name]; ok {
				continue
			}
			seenGroup[g.Name] = struct{}{}
			kept := g
			kept.TenderIDs = nil
			for _, id := range g.TenderIDs {
				if _, ok := activeByID[id]; ok {
					kept.TenderIDs = append(kept.TenderIDs, id)
					grouped[id] = struct{}{}
				}
			}
			if len(kept.TenderIDs) > 0 {
				out = append(out, kept)
			}
		}
	}

	for _, d := range active {
		if _, ok := grouped[d.ID]; ok {
			continue
		}
		out = append(out, tender.Group{
			Name:      d.DisplayLabel(),
			TenderIDs: []string{d.ID},
			Auth:      d.Auth,
			Subtype:   d.Subtype,
		})
	}
	return out
}
