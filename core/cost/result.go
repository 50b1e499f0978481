package cost

import (
	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/fees"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
)

// CommissionSource records where the marketplace rate came from
type CommissionSource string

const (
	CommissionSupplied CommissionSource = "supplied"
	CommissionLookup   CommissionSource = "lookup"
)

// Result is the full breakdown of one calculation.
//
// TotalFulfillmentFee == MonthlyFee + VariableFee and
// PartnerFinalProfit == GrossProfit - TotalFulfillmentFee always hold.
type Result struct {
	TierID      string            `json:"tier_id"`
	FeeBasis    catalog.FeeBasis  `json:"fee_basis"`
	Marketplace types.Marketplace `json:"marketplace"`
	Currency    types.Currency    `json:"currency"`

	SalesRevenue decimal.Decimal `json:"sales_revenue"`
	ProductCost  decimal.Decimal `json:"product_cost"`
	Quantity     int             `json:"quantity"`

	MarketplaceCommissionPercent decimal.Decimal  `json:"marketplace_commission_rate"`
	CommissionSource             CommissionSource `json:"commission_source"`
	Bracket                      fees.Bracket     `json:"bracket,omitempty"`

	MarketplaceCommission decimal.Decimal `json:"marketplace_commission"`
	LogisticsFee          decimal.Decimal `json:"logistics_fee"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	SPTFee                decimal.Decimal `json:"spt_fee"`
	GrossProfit           decimal.Decimal `json:"gross_profit"`

	MonthlyFee          decimal.Decimal `json:"monthly_fee"`
	VariableFee         decimal.Decimal `json:"variable_fee"`
	TotalFulfillmentFee decimal.Decimal `json:"total_fulfillment_fee"`

	PartnerFinalProfit  decimal.Decimal `json:"partner_final_profit"`
	ProfitMarginPercent decimal.Decimal `json:"profit_margin_percent"`

	// Breakdown lists deductions in waterfall order
	Breakdown []types.Deduction `json:"breakdown"`
}

// IsLoss reports whether the partner loses money on the sale
func (r *Result) IsLoss() bool {
	return r.PartnerFinalProfit.IsNegative()
}
