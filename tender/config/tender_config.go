package tender_config

import "fmt"

// Config is the tender section of the HCL configuration.
// String fields holding amounts are decoded as-is and parsed by
// tender.NewRegistry; see XXX_ naming for decode-only fields.
type Config struct {
	Tenders    []*Tender    `hcl:"tender"`
	Groups     []*Group     `hcl:"group"`
	RefundMaps []*RefundMap `hcl:"refund_map"`
	Currencies []*Currency  `hcl:"currency"`
	Devices    []*Device    `hcl:"device"`
	Selection  struct {
		MaxButtons int `hcl:"max_buttons"`
	} `hcl:"selection"`
}

type Tender struct {
	ID      string `hcl:"id,key"`
	Name    string `hcl:"name"`
	Plural  string `hcl:"plural"`
	Label   string `hcl:"label"`
	Type    string `hcl:"type"`
	Subtype string `hcl:"subtype"`
	Auth    string `hcl:"auth"`

	// refund policy flags: always, when_mapped; empty means never
	Refund []string `hcl:"refund"`

	// sale, refund_with, refund_without; empty means all
	Contexts []string `hcl:"contexts"`

	XXX_MinDenomination string `hcl:"min_denomination"` // use Registry rule, this is for decoding only
	Rounding            string `hcl:"rounding"`         // down|up|nearest
	ForeignCurrency     string `hcl:"foreign_currency"`
}

func (t *Tender) String() string { return fmt.Sprintf("tender.%s %s", t.ID, t.Name) }

type Group struct {
	Name     string   `hcl:"name,key"`
	Tenders  []string `hcl:"tenders"`
	Contexts []string `hcl:"contexts"`
}

func (g *Group) String() string { return fmt.Sprintf("group.%s members=%d", g.Name, len(g.Tenders)) }

// RefundMap routes refunds of one original tender type through
// substitute tender ids.
type RefundMap struct {
	SourceType string          `hcl:"source,key"`
	Targets    []*RefundTarget `hcl:"target"`
}

type RefundTarget struct {
	TenderID string `hcl:"tender,key"`
	Allowed  bool   `hcl:"allowed"`

	// bounds on the total refundable amount for the source type; empty = unbounded
	XXX_Min string `hcl:"min"`
	XXX_Max string `hcl:"max"`
}

func (m *RefundMap) String() string {
	return fmt.Sprintf("refund_map.%s targets=%d", m.SourceType, len(m.Targets))
}

// Currency carries the per-currency minimum denomination table.
type Currency struct {
	Code                string `hcl:"code,key"`
	XXX_MinDenomination string `hcl:"min_denomination"`
	Rounding            string `hcl:"rounding"`
}

// Device gates an auth category on peripheral availability.
// Absent or unparsable entries degrade to "eligible".
type Device struct {
	Category string `hcl:"category,key"`
	Disable  bool   `hcl:"disable"`
}
