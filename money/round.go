package money

import (
	"github.com/juju/errors"
	"github.com/shopspring/decimal"
)

// RoundingMode selects the direction of denomination rounding.
type RoundingMode int

const (
	RoundDown RoundingMode = iota
	RoundUp
	RoundNearest
)

func (m RoundingMode) String() string {
	switch m {
	case RoundDown:
		return "down"
	case RoundUp:
		return "up"
	case RoundNearest:
		return "nearest"
	}
	return "unknown"
}

func ParseRoundingMode(s string) (RoundingMode, error) {
	switch s {
	case "", "down":
		return RoundDown, nil
	case "up":
		return RoundUp, nil
	case "nearest":
		return RoundNearest, nil
	}
	return RoundDown, errors.Errorf("rounding mode=%s valid: down, up, nearest", s)
}

// RoundingRule constrains amounts to multiples of the smallest
// denomination Unit. Zero or negative Unit means no rounding applies.
type RoundingRule struct {
	Mode RoundingMode
	Unit decimal.Decimal
}

func (r RoundingRule) Enabled() bool { return r.Unit.IsPositive() }

// IsMultiple reports whether m is an exact multiple of Unit.
// A disabled rule accepts everything.
func (r RoundingRule) IsMultiple(m Money) bool {
	if !r.Enabled() {
		return true
	}
	return m.amount.Mod(r.Unit).IsZero()
}

// Apply rounds m to a multiple of Unit per Mode.
func (r RoundingRule) Apply(m Money) Money {
	if !r.Enabled() {
		return m
	}
	q := m.amount.Div(r.Unit)
	switch r.Mode {
	case RoundUp:
		q = q.Ceil()
	case RoundNearest:
		q = q.Round(0)
	default:
		q = q.Floor()
	}
	return Money{amount: q.Mul(r.Unit), currency: m.currency}
}
