// tender-cli loads a tender configuration and prints the selectable
// tender actions for a sample transaction. Development aid for
// checking config changes without a register.
package main

import (
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"

	"github.com/storekit/tender/catalog"
	"github.com/storekit/tender/log2"
	"github.com/storekit/tender/money"
	"github.com/storekit/tender/refund"
	"github.com/storekit/tender/selection"
	"github.com/storekit/tender/state"
	"github.com/storekit/tender/tender"
)

func main() {
	flagConfig := flag.String("config", "tender.hcl", "path to HCL config")
	flagDue := flag.String("due", "25.00", "balance due, negative for refund")
	flagDebug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	log := log2.NewStderr(log2.LInfo)
	if *flagDebug {
		log.SetLevel(log2.LDebug)
	}
	log.SetFlags(log2.LServiceFlags)

	config := state.MustReadConfigFile(*flagConfig, log)
	currency := config.Money.Currency
	if currency == "" {
		currency = "USD"
	}
	reg, err := config.Registry(log)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}

	due, err := money.Parse(*flagDue, currency)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}

	snap := sampleSnapshot(due, currency)
	active := catalog.ActiveTenders(reg, snap, log)
	groups := catalog.ActiveGroups(reg, snap, active)
	log.Debugf("active tenders=%d groups=%d", len(active), len(groups))

	var records []refund.Record
	if snap.IsRefund() {
		results := refund.Reconcile(reg, active, snap.OriginalTransactions, due.Abs())
		records = refund.Flatten(results)
	}

	res := selection.Derive(reg, groups, records, selection.Options{
		Due:          due,
		Transactions: snap.OriginalTransactions,
	})
	printResult(res)
}

// sampleSnapshot fabricates a transaction: a plain sale, or a linked
// return against two prior card/gift transactions when due is negative.
func sampleSnapshot(due money.Money, currency string) *state.Snapshot {
	snap := &state.Snapshot{BalanceDue: due}
	if due.Sign() >= 0 {
		snap.Lines = []state.DisplayLine{{Kind: state.LineSale}}
		return snap
	}

	tx1, tx2 := uuid.NewString(), uuid.NewString()
	part := money.New(due.Abs().Amount().Div(decimal.NewFromInt(2)), currency)

	snap.Lines = []state.DisplayLine{
		{Kind: state.LineReturnLinked, LinkedTransactionID: tx1, LinkedLineNumber: 1},
		{Kind: state.LineReturnLinked, LinkedTransactionID: tx2, LinkedLineNumber: 1},
	}
	snap.OriginalTransactions = []state.OriginalTransaction{
		{
			ReferenceID: tx1,
			ReturnTotal: part,
			Tenders: []state.OriginalTender{{
				TenderID: "card", Type: "card", Auth: tender.AuthPaymentDevice,
				Amount: part, RefundAllowed: true,
				References: []state.LineReference{
					{TransactionID: tx1, LineNumber: 1, RefundableAmount: part},
				},
			}},
		},
		{
			ReferenceID: tx2,
			ReturnTotal: part,
			Tenders: []state.OriginalTender{{
				TenderID: "gc1", Type: "gift_cert",
				Amount: part, RefundAllowed: true,
			}},
		},
	}
	return snap
}

func printResult(res selection.Result) {
	for i, item := range res.Main {
		fmt.Printf("%d. %s\n", i+1, formatItem(item))
	}
	if res.OverflowNeeded {
		fmt.Printf("%d. Other Tenders ->\n", len(res.Main)+1)
		for _, item := range res.Overflow {
			fmt.Printf("   - %s\n", formatItem(item))
		}
	}
}

func formatItem(item selection.Item) string {
	s := item.Label
	if item.Secondary != "" {
		s += " (" + item.Secondary + ")"
	}
	if item.Disabled {
		s += " [disabled]"
	}
	return s
}
