package money

import (
	"testing"
	"testing/quick"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	t.Parallel()

	a := MustParse("50.00", "USD")
	b := MustParse("12.35", "USD")
	assert.Equal(t, "62.35 USD", a.Add(b).String())
	assert.Equal(t, "37.65 USD", a.Sub(b).String())
	assert.Equal(t, "-50 USD", a.Neg().String())
	assert.Equal(t, "50 USD", a.Neg().Abs().String())
	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, b, a.Min(b))
	assert.True(t, Zero("USD").IsZero())
	assert.Equal(t, -1, a.Neg().Sign())
	assert.Equal(t, "12.35", b.Format2())
}

func TestCurrencyMismatchPanics(t *testing.T) {
	t.Parallel()

	usd := MustParse("1", "USD")
	eur := MustParse("1", "EUR")
	assert.Panics(t, func() { usd.Add(eur) })
	assert.Panics(t, func() { usd.Sub(eur) })
	assert.Panics(t, func() { usd.Cmp(eur) })
	assert.Panics(t, func() { usd.Min(eur) })
}

func TestParse(t *testing.T) {
	t.Parallel()

	_, err := Parse("12,0x", "USD")
	require.Error(t, err)
	m, err := Parse("0.001", "CAD")
	require.NoError(t, err)
	assert.Equal(t, "CAD", m.Currency())
	assert.Panics(t, func() { MustParse("nope", "USD") })
}

func TestAddSubRoundTrip(t *testing.T) {
	t.Parallel()

	f := func(i1, i2 int64) bool {
		a := New(decimal.New(i1, -2), "USD")
		b := New(decimal.New(i2, -2), "USD")
		return a.Add(b).Sub(b).Equal(a)
	}
	assert.NoError(t, quick.Check(f, nil))
}
