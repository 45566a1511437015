package refund

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/tender/log2"
	"github.com/storekit/tender/money"
	"github.com/storekit/tender/state"
	"github.com/storekit/tender/tender"
	tender_config "github.com/storekit/tender/tender/config"
)

func usd(s string) money.Money { return money.MustParse(s, "USD") }

func testRegistry(t testing.TB, maps ...*tender_config.RefundMap) *tender.Registry {
	reg, err := tender.NewRegistry(&tender_config.Config{
		Tenders: []*tender_config.Tender{
			{ID: "card", Name: "Card", Type: "card", Auth: "payment_device", Refund: []string{"always"}},
			{ID: "cash", Name: "Cash", Type: "cash", Refund: []string{"always"}},
			{ID: "gc1", Name: "Gift Certificate", Type: "gift_cert", Refund: []string{"always"}},
			{ID: "store_credit", Name: "Store Credit", Type: "store_credit",
				Auth: "stored_value_card", Refund: []string{"when_mapped"}},
			{ID: "points", Name: "Points", Type: "points", Auth: "loyalty_voucher", Refund: []string{"always"}},
		},
		RefundMaps: maps,
	}, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)
	return reg
}

func eligibleAll(reg *tender.Registry) []*tender.Definition {
	return reg.TendersFor(tender.ContextRefundWith | tender.ContextRefundWithout)
}

func giftToCreditMap(min, max string) *tender_config.RefundMap {
	return &tender_config.RefundMap{
		SourceType: "gift_cert",
		Targets: []*tender_config.RefundTarget{
			{TenderID: "store_credit", Allowed: true, XXX_Min: min, XXX_Max: max},
		},
	}
}

func TestReconcileClassification(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	txs := []state.OriginalTransaction{{
		ReferenceID: "tx1",
		ReturnTotal: usd("100.00"),
		Tenders: []state.OriginalTender{
			{TenderID: "card", Type: "card", Amount: usd("40.00"), RefundAllowed: true,
				References: []state.LineReference{{TransactionID: "tx1", LineNumber: 1, RefundableAmount: usd("40.00")}}},
			{TenderID: "cash", Type: "cash", Amount: usd("30.00"), RefundAllowed: true},
			{TenderID: "points", Type: "points", Auth: tender.AuthLoyaltyVoucher,
				Amount: usd("10.00"), RefundAllowed: true},
			{TenderID: "card", Type: "card", Amount: usd("20.00"), RefundAllowed: false},
		},
	}}

	results := Reconcile(reg, eligibleAll(reg), txs, usd("-90.00").Abs())
	require.Len(t, results, 1)
	res := results[0]

	// card with reference is referenced, cash without reference is
	// unreferenced, loyalty voucher never unreferenced, refund-not-allowed
	// line skipped entirely
	require.Len(t, res.Referenced, 1)
	assert.Equal(t, "card", res.Referenced[0].TenderID)
	assert.True(t, res.Referenced[0].Referenced)
	require.Len(t, res.Unreferenced, 1)
	assert.Equal(t, "cash", res.Unreferenced[0].TenderID)
	assert.Empty(t, res.Mapped)

	all := Flatten(results)
	require.Len(t, all, 2)
	assert.Equal(t, "card", all[0].TenderID)
	assert.Equal(t, "cash", all[1].TenderID)
	assert.Equal(t, []Record{res.Unreferenced[0]}, Unreferenced(results))
}

func TestReconcileReferencedOrder(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	ref := func(amount string) state.OriginalTender {
		return state.OriginalTender{
			TenderID: "card", Type: "card", Amount: usd(amount), RefundAllowed: true,
			References: []state.LineReference{{TransactionID: "tx1", RefundableAmount: usd(amount)}},
		}
	}
	first := ref("30.00")
	first.Subtype = "first"
	second := ref("30.00")
	second.Subtype = "second"
	txs := []state.OriginalTransaction{{
		ReferenceID: "tx1",
		ReturnTotal: usd("100.00"),
		Tenders:     []state.OriginalTender{ref("10.00"), first, second, ref("20.00")},
	}}

	res := Reconcile(reg, eligibleAll(reg), txs, usd("100.00"))
	require.Len(t, res, 1)
	got := make([]string, 0, 4)
	for _, r := range res[0].Referenced {
		got = append(got, r.Amount.Amount().String()+"/"+r.Subtype)
	}
	// descending, equal amounts keep encounter order
	assert.Equal(t, []string{"30/first", "30/second", "20/", "10/"}, got)
}

func TestReconcileMappedFold(t *testing.T) {
	t.Parallel()

	// scenario: the same target id from two source lines folds into one
	// record with summed amounts
	reg := testRegistry(t, giftToCreditMap("", ""))
	txs := []state.OriginalTransaction{{
		ReferenceID: "tx1",
		ReturnTotal: usd("25.00"),
		Tenders: []state.OriginalTender{
			{TenderID: "gc1", Type: "gift_cert", Amount: usd("10.00"), RefundAllowed: true},
			{TenderID: "gc1", Type: "gift_cert", Amount: usd("15.00"), RefundAllowed: true},
		},
	}}

	results := Reconcile(reg, eligibleAll(reg), txs, usd("25.00"))
	require.Len(t, results, 1)
	require.Len(t, results[0].Mapped, 1)
	m := results[0].Mapped[0]
	assert.Equal(t, KindMapped, m.Kind)
	assert.Equal(t, "store_credit", m.TenderID)
	assert.Equal(t, "25", m.Amount.Amount().String())
	assert.Equal(t, []string{"gc1", "gc1"}, m.SourceTenderIDs)
	assert.Equal(t, tender.AuthStoredValueCard, m.Auth)

	// gift cert itself still classifies as unreferenced
	assert.Len(t, results[0].Unreferenced, 2)
}

func TestReconcileMappedBounds(t *testing.T) {
	t.Parallel()

	txs := []state.OriginalTransaction{
		{ReferenceID: "tx1", ReturnTotal: usd("20.00"), Tenders: []state.OriginalTender{
			{TenderID: "gc1", Type: "gift_cert", Amount: usd("20.00"), RefundAllowed: true},
		}},
		{ReferenceID: "tx2", ReturnTotal: usd("20.00"), Tenders: []state.OriginalTender{
			{TenderID: "gc1", Type: "gift_cert", Amount: usd("20.00"), RefundAllowed: true},
		}},
	}

	// bounds see the 40 total across both transactions, not 20 per line
	reg := testRegistry(t, giftToCreditMap("30", ""))
	results := Reconcile(reg, eligibleAll(reg), txs, usd("40.00"))
	require.Len(t, results, 2)
	assert.Len(t, results[0].Mapped, 1)
	assert.Len(t, results[1].Mapped, 1)

	reg = testRegistry(t, giftToCreditMap("", "30"))
	results = Reconcile(reg, eligibleAll(reg), txs, usd("40.00"))
	assert.Empty(t, results[0].Mapped)
	assert.Empty(t, results[1].Mapped)
}

func TestReconcileMappedRequiresPolicy(t *testing.T) {
	t.Parallel()

	txs := []state.OriginalTransaction{{
		ReferenceID: "tx1", ReturnTotal: usd("10.00"),
		Tenders: []state.OriginalTender{
			{TenderID: "gc1", Type: "gift_cert", Amount: usd("10.00"), RefundAllowed: true},
		},
	}}

	// target without when_mapped policy is ignored
	reg := testRegistry(t, &tender_config.RefundMap{
		SourceType: "gift_cert",
		Targets:    []*tender_config.RefundTarget{{TenderID: "card", Allowed: true}},
	})
	results := Reconcile(reg, eligibleAll(reg), txs, usd("10.00"))
	assert.Empty(t, results[0].Mapped)

	// disallowed mapping is ignored
	reg = testRegistry(t, &tender_config.RefundMap{
		SourceType: "gift_cert",
		Targets:    []*tender_config.RefundTarget{{TenderID: "store_credit", Allowed: false}},
	})
	results = Reconcile(reg, eligibleAll(reg), txs, usd("10.00"))
	assert.Empty(t, results[0].Mapped)
}

func TestReconcileIdempotent(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, giftToCreditMap("", ""))
	txs := []state.OriginalTransaction{{
		ReferenceID: "tx1",
		ReturnTotal: usd("55.00"),
		Tenders: []state.OriginalTender{
			{TenderID: "card", Type: "card", Amount: usd("30.00"), RefundAllowed: true,
				References: []state.LineReference{{TransactionID: "tx1", RefundableAmount: usd("30.00")}}},
			{TenderID: "gc1", Type: "gift_cert", Amount: usd("25.00"), RefundAllowed: true},
		},
	}}

	a := Reconcile(reg, eligibleAll(reg), txs, usd("55.00"))
	b := Reconcile(reg, eligibleAll(reg), txs, usd("55.00"))
	require.Equal(t, a, b)
}

func TestReconcileEmptyInput(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	assert.Empty(t, Reconcile(reg, eligibleAll(reg), nil, usd("10.00")))
}
