// Package catalog - Authoritative pricing tier catalog
// Tiers are configuration: created once at start-up and never mutated.
// A partner's pricing tier is a key into this catalog.
package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// FeeBasis selects what a tier's variable rate is applied to
type FeeBasis string

const (
	// BasisRevenue is the legacy commission-on-revenue model
	BasisRevenue FeeBasis = "revenue"
	// BasisNetProfit is the current profit-share model
	BasisNetProfit FeeBasis = "net_profit"
)

// Valid reports whether b is a known basis
func (b FeeBasis) Valid() bool {
	return b == BasisRevenue || b == BasisNetProfit
}

// String returns string representation
func (b FeeBasis) String() string {
	return string(b)
}

// Limits are descriptive capability caps. Zero means unlimited.
// The calculator never reads them.
type Limits struct {
	Marketplaces    int    `json:"marketplaces" yaml:"marketplaces"`
	Products        int    `json:"products" yaml:"products"`
	WarehouseKg     int    `json:"warehouse_kg" yaml:"warehouse_kg"`
	SupportSLAHours int    `json:"support_sla_hours" yaml:"support_sla_hours"`
	Support         string `json:"support,omitempty" yaml:"support,omitempty"`
}

// Tier is a named pricing plan
type Tier struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// MonthlyFee is the fixed subscription charge, billed for the full month
	MonthlyFee decimal.Decimal `json:"monthly_fee" yaml:"monthly_fee"`

	// Rate is a fraction in [0,1]; FeeBasis says what it multiplies
	Rate     decimal.Decimal `json:"rate" yaml:"rate"`
	FeeBasis FeeBasis        `json:"fee_basis" yaml:"fee_basis"`

	// MinRevenue and MaxRevenue describe the intended revenue band (advisory)
	MinRevenue decimal.Decimal  `json:"min_revenue" yaml:"min_revenue"`
	MaxRevenue *decimal.Decimal `json:"max_revenue,omitempty" yaml:"max_revenue,omitempty"`

	Limits Limits `json:"limits" yaml:"limits"`
}

// InBand reports whether monthly revenue falls inside the tier's advisory band
func (t *Tier) InBand(revenue decimal.Decimal) bool {
	if revenue.LessThan(t.MinRevenue) {
		return false
	}
	return t.MaxRevenue == nil || revenue.LessThanOrEqual(*t.MaxRevenue)
}

// Catalog is the tier catalog
type Catalog struct {
	tiers map[string]*Tier
	order []string
}

// NewCatalog creates a new empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		tiers: make(map[string]*Tier),
	}
}

// Register adds a tier. Ids must be unique.
func (c *Catalog) Register(tier Tier) error {
	if tier.ID == "" {
		return errors.Input("tier id is required")
	}
	if _, exists := c.tiers[tier.ID]; exists {
		return errors.Inputf("duplicate tier id: %s", tier.ID)
	}
	c.tiers[tier.ID] = &tier
	c.order = append(c.order, tier.ID)
	return nil
}

// Get returns a tier by id, or a TIER_NOT_FOUND error. Surrounding
// whitespace in id is ignored.
func (c *Catalog) Get(id string) (*Tier, error) {
	tier, ok := c.tiers[strings.TrimSpace(id)]
	if !ok {
		return nil, errors.TierNotFound(id)
	}
	copied := *tier
	return &copied, nil
}

// Has reports whether id is a registered tier
func (c *Catalog) Has(id string) bool {
	_, ok := c.tiers[strings.TrimSpace(id)]
	return ok
}

// List returns all tiers in registration order
func (c *Catalog) List() []Tier {
	out := make([]Tier, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.tiers[id])
	}
	return out
}

// Len returns the number of tiers
func (c *Catalog) Len() int {
	return len(c.tiers)
}

// Suggest returns the tiers whose advisory band contains revenue,
// cheapest monthly fee first
func (c *Catalog) Suggest(revenue decimal.Decimal) []Tier {
	var out []Tier
	for _, t := range c.List() {
		if t.InBand(revenue) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MonthlyFee.LessThan(out[j].MonthlyFee)
	})
	return out
}
