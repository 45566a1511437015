package tender

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/tender/log2"
	tender_config "github.com/storekit/tender/tender/config"
)

func testConfig() *tender_config.Config {
	return &tender_config.Config{
		Tenders: []*tender_config.Tender{
			{ID: "cash", Name: "Cash", Type: "cash", Refund: []string{"always"}},
			{ID: "visa", Name: "Visa", Type: "card", Auth: "payment_device", Refund: []string{"always"}},
			{ID: "euro", Name: "Euro Cash", Type: "cash", ForeignCurrency: "EUR"},
			{ID: "store_credit", Name: "Store Credit", Type: "store_credit",
				Auth: "stored_value_card", Refund: []string{"when_mapped"}},
		},
		Groups: []*tender_config.Group{
			{Name: "card", Tenders: []string{"visa", "ghost"}},
		},
		Currencies: []*tender_config.Currency{
			{Code: "EUR", XXX_MinDenomination: "0.05", Rounding: "nearest"},
		},
		Devices: []*tender_config.Device{
			{Category: "payment_device", Disable: true},
			{Category: "quantum_pad"},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(testConfig(), log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)

	d, ok := reg.Get("store_credit")
	require.True(t, ok)
	assert.True(t, d.Refund.WhenMapped())
	assert.False(t, d.Refund.Always())

	cash, _ := reg.Get("cash")
	assert.True(t, cash.Refund.Always())
	assert.False(t, cash.Refund.Never())

	// unknown group member dropped, group survives with the rest
	groups := reg.GroupsFor(ContextSale)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"visa"}, groups[0].TenderIDs)

	assert.Equal(t, DefaultMaxButtons, reg.MaxButtons())
}

func TestRuleForCurrencyFallback(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(testConfig(), log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)

	// foreign tender without its own rule uses the foreign currency table
	euro, ok := reg.Get("euro")
	require.True(t, ok)
	rule, ok := reg.RuleFor(euro, "USD")
	require.True(t, ok)
	assert.Equal(t, "0.05", rule.Unit.String())

	// home tender with neither rule nor table entry: no rounding
	cash, _ := reg.Get("cash")
	_, ok = reg.RuleFor(cash, "USD")
	assert.False(t, ok)
}

func TestDeviceEligible(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(testConfig(), log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)

	assert.False(t, reg.DeviceEligible(AuthPaymentDevice))
	// unconfigured categories degrade to eligible
	assert.True(t, reg.DeviceEligible(AuthGiftDevice))
	assert.True(t, reg.DeviceEligible(AuthNone))
}

func TestParseAuthCategoryRoundTrip(t *testing.T) {
	t.Parallel()

	for c := AuthNone; c <= AuthLoyaltyVoucher; c++ {
		parsed, err := ParseAuthCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseAuthCategory("telepathy")
	assert.Error(t, err)
}

func TestRefundTargetBounds(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(&tender_config.Config{
		RefundMaps: []*tender_config.RefundMap{
			{SourceType: "gift_cert", Targets: []*tender_config.RefundTarget{
				{TenderID: "store_credit", Allowed: true, XXX_Min: "5", XXX_Max: "500"},
				{TenderID: "loose", Allowed: true},
				{TenderID: "sloppy", Allowed: true, XXX_Min: "much"},
			}},
		},
	}, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)

	maps := reg.RefundMapsFor("gift_cert")
	require.Len(t, maps, 3)

	in := func(target RefundTarget, amount string) bool {
		return target.InBounds(decimal.RequireFromString(amount))
	}
	assert.False(t, in(maps[0], "4.99"))
	assert.True(t, in(maps[0], "5"))
	assert.True(t, in(maps[0], "500"))
	assert.False(t, in(maps[0], "500.01"))
	// no bounds, everything passes
	assert.True(t, in(maps[1], "0"))
	// unparsable bound degrades to unbounded
	assert.Nil(t, maps[2].Min)

	assert.Empty(t, reg.RefundMapsFor("unknown_type"))
}
