package cost

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/fees"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// Input is one calculation request
type Input struct {
	SalesRevenue decimal.Decimal `json:"sales_revenue" yaml:"sales_revenue"`
	ProductCost  decimal.Decimal `json:"product_cost" yaml:"product_cost"`
	Quantity     int             `json:"quantity" yaml:"quantity"`
	TierID       string          `json:"tier_id" yaml:"tier_id"`

	// Marketplace selects the fee table; uzum when empty
	Marketplace types.Marketplace `json:"marketplace,omitempty" yaml:"marketplace,omitempty"`

	// MarketplaceCommissionPercent is a percentage (3 means 3%). When nil the
	// rate is looked up by Category and unit price.
	MarketplaceCommissionPercent *decimal.Decimal `json:"marketplace_commission_rate,omitempty" yaml:"marketplace_commission_rate,omitempty"`

	LogisticsSize fees.SizeKey `json:"logistics_size" yaml:"logistics_size"`

	// Category is only used when the commission rate must be looked up
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Validate rejects inputs the waterfall cannot price. Lookups against the
// fee schedule (size and category) are checked by the calculator.
func (in *Input) Validate() error {
	if in.SalesRevenue.IsNegative() {
		return errors.Inputf("sales_revenue must not be negative, got %s", in.SalesRevenue)
	}
	if in.ProductCost.IsNegative() {
		return errors.Inputf("product_cost must not be negative, got %s", in.ProductCost)
	}
	if in.Quantity < 1 {
		return errors.Inputf("quantity must be at least 1, got %d", in.Quantity)
	}
	if strings.TrimSpace(in.TierID) == "" {
		return errors.Input("tier_id is required")
	}
	if in.Marketplace != "" {
		if _, ok := types.ParseMarketplace(string(in.Marketplace)); !ok {
			return errors.Inputf("unknown marketplace: %s", in.Marketplace)
		}
	}
	if p := in.MarketplaceCommissionPercent; p != nil {
		if p.IsNegative() || p.GreaterThan(types.Hundred()) {
			return errors.Inputf("marketplace_commission_rate must be within [0,100], got %s", p)
		}
	} else if strings.TrimSpace(in.Category) == "" {
		return errors.Input("either marketplace_commission_rate or category is required")
	}
	if strings.TrimSpace(string(in.LogisticsSize)) == "" {
		return errors.Input("logistics_size is required")
	}
	return nil
}

func (in *Input) marketplace() types.Marketplace {
	if in.Marketplace == "" {
		return types.Uzum
	}
	mp, _ := types.ParseMarketplace(string(in.Marketplace))
	return mp
}
