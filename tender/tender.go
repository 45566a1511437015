// Package tender resolves configured tender definitions, groups,
// refund mappings and denomination rules into an immutable Registry.
package tender

import (
	"github.com/juju/errors"
	"github.com/shopspring/decimal"

	"github.com/storekit/tender/helpers"
	"github.com/storekit/tender/log2"
	"github.com/storekit/tender/money"
	tender_config "github.com/storekit/tender/tender/config"
)

// AuthCategory is the authorization backend of a tender.
type AuthCategory int

const (
	AuthNone AuthCategory = iota
	AuthPaymentDevice
	AuthNonIntegratedDevice
	AuthGiftDevice
	AuthStoredValueCard
	AuthStoredValueCertificate
	AuthWallet
	AuthLoyaltyVoucher
)

var authNames = map[AuthCategory]string{
	AuthNone:                   "none",
	AuthPaymentDevice:          "payment_device",
	AuthNonIntegratedDevice:    "non_integrated_device",
	AuthGiftDevice:             "gift_device",
	AuthStoredValueCard:        "stored_value_card",
	AuthStoredValueCertificate: "stored_value_certificate",
	AuthWallet:                 "wallet",
	AuthLoyaltyVoucher:         "loyalty_voucher",
}

func (c AuthCategory) String() string {
	if s, ok := authNames[c]; ok {
		return s
	}
	return "invalid"
}

func ParseAuthCategory(s string) (AuthCategory, error) {
	if s == "" {
		return AuthNone, nil
	}
	for c, name := range authNames {
		if s == name {
			return c, nil
		}
	}
	return AuthNone, errors.Errorf("auth category=%s is not valid", s)
}

// RefundPolicy is a flag set; zero value allows no refunds.
type RefundPolicy uint8

const (
	RefundAlways RefundPolicy = 1 << iota
	RefundWhenMapped
)

func (p RefundPolicy) Always() bool     { return p&RefundAlways != 0 }
func (p RefundPolicy) WhenMapped() bool { return p&RefundWhenMapped != 0 }
func (p RefundPolicy) Never() bool      { return p == 0 }

func parseRefundPolicy(flags []string) (RefundPolicy, error) {
	var p RefundPolicy
	for _, f := range flags {
		switch f {
		case "always":
			p |= RefundAlways
		case "when_mapped":
			p |= RefundWhenMapped
		case "never":
			// explicit never adds nothing but is accepted
		default:
			return 0, errors.Errorf("refund flag=%s valid: always, when_mapped, never", f)
		}
	}
	return p, nil
}

// Context is the transaction situation a tender may be offered in.
type Context uint8

const (
	ContextSale Context = 1 << iota
	ContextRefundWith
	ContextRefundWithout

	contextAll = ContextSale | ContextRefundWith | ContextRefundWithout
)

func parseContexts(names []string) (Context, error) {
	if len(names) == 0 {
		return contextAll, nil
	}
	var c Context
	for _, n := range names {
		switch n {
		case "sale":
			c |= ContextSale
		case "refund_with":
			c |= ContextRefundWith
		case "refund_without":
			c |= ContextRefundWithout
		default:
			return 0, errors.Errorf("context=%s valid: sale, refund_with, refund_without", n)
		}
	}
	return c, nil
}

// Definition is one configured tender type, read-only after resolve.
type Definition struct {
	ID              string
	Name            string
	Plural          string
	Label           string
	Type            string
	Subtype         string
	Auth            AuthCategory
	Refund          RefundPolicy
	MinRule         money.RoundingRule
	ForeignCurrency string

	contexts Context
}

func (d *Definition) InContext(c Context) bool { return d.contexts&c != 0 }

func (d *Definition) DisplayLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// Group is a bundle of tender ids sharing one selectable action.
// Auth and Subtype are populated only when all members agree.
type Group struct {
	Name      string
	TenderIDs []string
	Auth      AuthCategory
	Subtype   string

	contexts Context
}

func (g Group) InContext(c Context) bool { return g.contexts&c != 0 }

// RefundTarget is one resolved refund-mapping rule for a source type.
// Nil Min/Max mean unbounded.
type RefundTarget struct {
	TenderID string
	Allowed  bool
	Min      *decimal.Decimal
	Max      *decimal.Decimal
}

// InBounds checks total against the configured min/max.
func (t RefundTarget) InBounds(total decimal.Decimal) bool {
	if t.Min != nil && total.Cmp(*t.Min) < 0 {
		return false
	}
	if t.Max != nil && total.Cmp(*t.Max) > 0 {
		return false
	}
	return true
}

const DefaultMaxButtons = 4

// Registry is the resolved tender catalog configuration.
type Registry struct {
	log         *log2.Log
	byID        map[string]*Definition
	ordered     []*Definition
	groups      []Group
	refundMaps  map[string][]RefundTarget
	currencyMin map[string]money.RoundingRule
	deviceDown  map[AuthCategory]bool
	maxButtons  int
}

func NewRegistry(c *tender_config.Config, log *log2.Log) (*Registry, error) {
	r := &Registry{
		log:         log,
		byID:        make(map[string]*Definition, len(c.Tenders)),
		refundMaps:  make(map[string][]RefundTarget, len(c.RefundMaps)),
		currencyMin: make(map[string]money.RoundingRule, len(c.Currencies)),
		deviceDown:  make(map[AuthCategory]bool),
		maxButtons:  c.Selection.MaxButtons,
	}
	if r.maxButtons <= 0 {
		r.maxButtons = DefaultMaxButtons
	}

	errs := make([]error, 0)
	for _, tc := range c.Tenders {
		d, err := r.resolveTender(tc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := r.byID[d.ID]; ok {
			errs = append(errs, errors.Errorf("tender id=%s duplicate", d.ID))
			continue
		}
		r.byID[d.ID] = d
		r.ordered = append(r.ordered, d)
	}
	for _, gc := range c.Groups {
		g, err := r.resolveGroup(gc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(g.TenderIDs) > 0 {
			r.groups = append(r.groups, g)
		}
	}
	for _, mc := range c.RefundMaps {
		if mc.SourceType == "" {
			errs = append(errs, errors.Errorf("refund_map source=(empty) is invalid"))
			continue
		}
		r.refundMaps[mc.SourceType] = r.resolveTargets(mc)
	}
	for _, cc := range c.Currencies {
		mode, err := money.ParseRoundingMode(cc.Rounding)
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "currency=%s", cc.Code))
			continue
		}
		r.currencyMin[cc.Code] = money.RoundingRule{Mode: mode, Unit: parseUnit(cc.XXX_MinDenomination, log, "currency="+cc.Code)}
	}
	for _, dc := range c.Devices {
		cat, err := ParseAuthCategory(dc.Category)
		if err != nil {
			// peripheral misconfiguration must not block the payment screen
			log.Debugf("device category=%s not recognized, treating as eligible", dc.Category)
			continue
		}
		r.deviceDown[cat] = dc.Disable
	}

	if err := helpers.FoldErrors(errs); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) resolveTender(tc *tender_config.Tender) (*Definition, error) {
	if tc.ID == "" {
		return nil, errors.Errorf("tender id=(empty) is invalid")
	}
	auth, err := ParseAuthCategory(tc.Auth)
	if err != nil {
		return nil, errors.Annotatef(err, "tender id=%s", tc.ID)
	}
	policy, err := parseRefundPolicy(tc.Refund)
	if err != nil {
		return nil, errors.Annotatef(err, "tender id=%s", tc.ID)
	}
	contexts, err := parseContexts(tc.Contexts)
	if err != nil {
		return nil, errors.Annotatef(err, "tender id=%s", tc.ID)
	}
	mode, err := money.ParseRoundingMode(tc.Rounding)
	if err != nil {
		return nil, errors.Annotatef(err, "tender id=%s", tc.ID)
	}
	name := tc.Name
	if name == "" {
		name = tc.ID
	}
	return &Definition{
		ID:              tc.ID,
		Name:            name,
		Plural:          tc.Plural,
		Label:           tc.Label,
		Type:            tc.Type,
		Subtype:         tc.Subtype,
		Auth:            auth,
		Refund:          policy,
		MinRule:         money.RoundingRule{Mode: mode, Unit: parseUnit(tc.XXX_MinDenomination, r.log, "tender id="+tc.ID)},
		ForeignCurrency: tc.ForeignCurrency,
		contexts:        contexts,
	}, nil
}

func (r *Registry) resolveGroup(gc *tender_config.Group) (Group, error) {
	if gc.Name == "" {
		return Group{}, errors.Errorf("group name=(empty) is invalid")
	}
	contexts, err := parseContexts(gc.Contexts)
	if err != nil {
		return Group{}, errors.Annotatef(err, "group name=%s", gc.Name)
	}
	g := Group{Name: gc.Name, contexts: contexts}
	for _, id := range gc.Tenders {
		if _, ok := r.byID[id]; !ok {
			r.log.Debugf("group=%s member=%s not configured, dropped", gc.Name, id)
			continue
		}
		g.TenderIDs = append(g.TenderIDs, id)
	}
	// auth/subtype only when homogeneous across members
	for i, id := range g.TenderIDs {
		d := r.byID[id]
		if i == 0 {
			g.Auth, g.Subtype = d.Auth, d.Subtype
			continue
		}
		if g.Auth != d.Auth {
			g.Auth = AuthNone
		}
		if g.Subtype != d.Subtype {
			g.Subtype = ""
		}
	}
	return g, nil
}

func (r *Registry) resolveTargets(mc *tender_config.RefundMap) []RefundTarget {
	targets := make([]RefundTarget, 0, len(mc.Targets))
	for _, t := range mc.Targets {
		rt := RefundTarget{TenderID: t.TenderID, Allowed: t.Allowed}
		rt.Min = parseBound(t.XXX_Min, r.log, "refund_map source="+mc.SourceType+" min")
		rt.Max = parseBound(t.XXX_Max, r.log, "refund_map source="+mc.SourceType+" max")
		targets = append(targets, rt)
	}
	return targets
}

// parseUnit: non-numeric minimum denomination means "no rounding applies".
func parseUnit(s string, log *log2.Log, tag string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Debugf("%s min_denomination=%q not numeric, rounding disabled", tag, s)
		return decimal.Zero
	}
	return d
}

// parseBound: unparsable bound degrades to unbounded.
func parseBound(s string, log *log2.Log, tag string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Debugf("%s=%q not numeric, unbounded", tag, s)
		return nil
	}
	return &d
}

func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// TendersFor returns configured tenders active in context c, in
// configuration order.
func (r *Registry) TendersFor(c Context) []*Definition {
	out := make([]*Definition, 0, len(r.ordered))
	for _, d := range r.ordered {
		if d.InContext(c) {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) GroupsFor(c Context) []Group {
	out := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		if g.InContext(c) {
			out = append(out, g)
		}
	}
	return out
}

func (r *Registry) RefundMapsFor(sourceType string) []RefundTarget {
	return r.refundMaps[sourceType]
}

// RuleFor picks the tender's own denomination rule, falling back to
// the currency minimum table. Second result is false when no rounding
// applies.
func (r *Registry) RuleFor(d *Definition, currency string) (money.RoundingRule, bool) {
	if d.MinRule.Enabled() {
		return d.MinRule, true
	}
	code := currency
	if d.ForeignCurrency != "" {
		code = d.ForeignCurrency
	}
	rule, ok := r.currencyMin[code]
	return rule, ok && rule.Enabled()
}

// DeviceEligible degrades to true unless configuration explicitly
// disables the category.
func (r *Registry) DeviceEligible(c AuthCategory) bool {
	return !r.deviceDown[c]
}

func (r *Registry) MaxButtons() int { return r.maxButtons }
