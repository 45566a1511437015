package tender

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/storekit/tender/money"
)

// RoundingResult is the denomination-adjusted amount for one tender.
type RoundingResult struct {
	TenderID string
	Rounded  money.Money
}

// RoundedTenderFor applies the tender's denomination rule to the due
// amount. Second result is false when the tender is unknown or no
// rounding applies.
func (r *Registry) RoundedTenderFor(tenderID string, due money.Money) (RoundingResult, bool) {
	d, ok := r.byID[tenderID]
	if !ok {
		return RoundingResult{}, false
	}
	rule, ok := r.RuleFor(d, due.Currency())
	if !ok {
		return RoundingResult{}, false
	}
	return RoundingResult{TenderID: tenderID, Rounded: rule.Apply(due)}, true
}

// ForeignAmountFor converts a home-currency amount into the tender's
// foreign currency at the supplied rate. Rate sourcing is the caller's
// job. Second result is false when the tender is unknown, has no
// foreign currency, or the rate is not positive.
func (r *Registry) ForeignAmountFor(tenderID string, home money.Money, rate decimal.Decimal) (money.Money, bool) {
	d, ok := r.byID[tenderID]
	if !ok || d.ForeignCurrency == "" {
		return money.Money{}, false
	}
	if !rate.IsPositive() {
		return money.Money{}, false
	}
	return money.New(home.Amount().Mul(rate), d.ForeignCurrency), true
}

// AmountValidation is the outcome of checking a manually entered
// amount. Empty InvalidAmountMessage means the amount is acceptable.
type AmountValidation struct {
	IsManualTenderInput  bool
	InvalidAmountMessage string
}

// ValidateEnteredAmount checks text against the tender's denomination
// rule. Foreign tenders are checked in the foreign currency when a
// foreign amount is supplied. On a failed multiple check the message
// carries the rounded suggestion; the amount is never substituted here.
func (r *Registry) ValidateEnteredAmount(tenderID, text, currency string, rounded *RoundingResult, foreign *money.Money) AmountValidation {
	if text == "" {
		return AmountValidation{}
	}
	v := AmountValidation{IsManualTenderInput: true}
	if rounded != nil && text == rounded.Rounded.Amount().String() {
		// user accepted the suggested amount, not manual input
		v.IsManualTenderInput = false
	}

	entered, err := money.Parse(text, currency)
	if err != nil {
		v.InvalidAmountMessage = fmt.Sprintf("amount %q is not a number", text)
		return v
	}

	d, ok := r.byID[tenderID]
	if !ok {
		// unknown tender: no rounding constraint applies
		return v
	}
	check := entered
	if foreign != nil && d.ForeignCurrency != "" {
		check = *foreign
	}
	rule, ok := r.RuleFor(d, check.Currency())
	if !ok {
		return v
	}
	if !rule.IsMultiple(check) {
		suggest := rule.Apply(check)
		v.InvalidAmountMessage = fmt.Sprintf(
			"amount %s is not a multiple of %s, nearest allowed is %s",
			check.Amount().String(), rule.Unit.String(), suggest.Amount().String())
	}
	return v
}
