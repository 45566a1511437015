// Package money holds currency-tagged decimal amounts and
// denomination rounding rules.
package money

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
)

var ErrParseAmount = errors.New("amount is not a number")

// Money is an arbitrary-precision amount tagged with a currency code.
// Arithmetic between different currencies is a programming error and panics.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func New(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: currency}
}

func Zero(currency string) Money { return Money{currency: currency} }

func Parse(text string, currency string) (Money, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Money{}, errors.Annotatef(ErrParseAmount, "parse %q", text)
	}
	return Money{amount: d, currency: currency}, nil
}

func MustParse(text string, currency string) Money {
	m, err := Parse(text, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

// guard enforces the single-currency invariant on binary operations.
func (m Money) guard(other Money, op string) {
	if m.currency != other.currency {
		panic(fmt.Sprintf("money: %s %s %s: currency mismatch", m, op, other))
	}
}

func (m Money) Add(other Money) Money {
	m.guard(other, "+")
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}
}

func (m Money) Sub(other Money) Money {
	m.guard(other, "-")
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}
}

func (m Money) Neg() Money { return Money{amount: m.amount.Neg(), currency: m.currency} }
func (m Money) Abs() Money { return Money{amount: m.amount.Abs(), currency: m.currency} }

// Cmp returns -1, 0 or 1.
func (m Money) Cmp(other Money) int {
	m.guard(other, "<=>")
	return m.amount.Cmp(other.amount)
}

func (m Money) Equal(other Money) bool { return m.Cmp(other) == 0 }
func (m Money) IsZero() bool           { return m.amount.IsZero() }
func (m Money) Sign() int              { return m.amount.Sign() }

func (m Money) Min(other Money) Money {
	if m.Cmp(other) <= 0 {
		return m
	}
	return other
}

func (m Money) String() string {
	if m.currency == "" {
		return m.amount.String()
	}
	return m.amount.String() + " " + m.currency
}

// Format2 renders with two decimal places, for button labels.
func (m Money) Format2() string { return m.amount.StringFixed(2) }
