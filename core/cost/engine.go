// Package cost computes a partner's profit for a sale: marketplace-side
// deductions, the pricing tier's fulfillment fee, and the final margin.
//
// The calculator is a pure function of its input, the tier catalog and the
// fee schedule it was built with. It performs no I/O and is safe for
// concurrent use.
package cost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/fees"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
)

// Options are the platform-wide constants applied to every calculation
type Options struct {
	// Currency labels results
	Currency types.Currency

	// TaxRate is the fraction of revenue withheld as tax
	TaxRate decimal.Decimal

	// SPTFeePerItem is the fixed per-item handling fee
	SPTFeePerItem decimal.Decimal

	// DeductSPTFee subtracts the handling fee from gross profit.
	// When false the fee is reported but not deducted.
	DeductSPTFee bool
}

// DefaultOptions returns the platform defaults: 3% tax, 2000 per item SPT
// fee reported but not deducted.
func DefaultOptions() Options {
	return Options{
		Currency:      types.CurrencyUZS,
		TaxRate:       decimal.RequireFromString("0.03"),
		SPTFeePerItem: decimal.NewFromInt(2000),
		DeductSPTFee:  false,
	}
}

// Calculator computes partner profit
type Calculator struct {
	tiers       *catalog.Catalog
	fees        *fees.Schedule
	opts        Options
	fingerprint string
}

// NewCalculator creates a calculator over an injected catalog and fee schedule
func NewCalculator(tiers *catalog.Catalog, schedule *fees.Schedule, opts Options) *Calculator {
	return &Calculator{
		tiers:       tiers,
		fees:        schedule,
		opts:        opts,
		fingerprint: fingerprint(tiers, schedule, opts),
	}
}

// Tiers returns the catalog the calculator prices against
func (c *Calculator) Tiers() *catalog.Catalog {
	return c.tiers
}

// Fees returns the fee schedule the calculator looks rates up in
func (c *Calculator) Fees() *fees.Schedule {
	return c.fees
}

// Options returns the calculator constants
func (c *Calculator) Options() Options {
	return c.opts
}

// ComputePartnerProfit runs the full waterfall for one sale
func (c *Calculator) ComputePartnerProfit(in Input) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tier, err := c.tiers.Get(in.TierID)
	if err != nil {
		return nil, err
	}
	side, err := c.marketplaceSide(in)
	if err != nil {
		return nil, err
	}
	platform := c.platformFees(tier, in.SalesRevenue, side.GrossProfit)

	result := &Result{
		TierID:                       tier.ID,
		FeeBasis:                     tier.FeeBasis,
		Marketplace:                  side.Marketplace,
		Currency:                     c.opts.Currency,
		SalesRevenue:                 in.SalesRevenue,
		ProductCost:                  in.ProductCost,
		Quantity:                     in.Quantity,
		MarketplaceCommissionPercent: side.CommissionPercent,
		CommissionSource:             side.CommissionSource,
		Bracket:                      side.Bracket,
		MarketplaceCommission:        side.Commission,
		LogisticsFee:                 side.Logistics,
		TaxAmount:                    side.Tax,
		SPTFee:                       side.SPT,
		GrossProfit:                  side.GrossProfit,
		MonthlyFee:                   platform.Monthly,
		VariableFee:                  platform.Variable,
		TotalFulfillmentFee:          platform.Total,
		PartnerFinalProfit:           side.GrossProfit.Sub(platform.Total),
	}
	result.ProfitMarginPercent = marginPercent(result.PartnerFinalProfit, in.SalesRevenue)
	result.Breakdown = append(side.Deductions, platform.Deductions...)

	return result, nil
}

// sideCosts are the marketplace-side deductions of one sale
type sideCosts struct {
	Marketplace       types.Marketplace
	CommissionPercent decimal.Decimal
	CommissionSource  CommissionSource
	Bracket           fees.Bracket
	Commission        decimal.Decimal
	Logistics         decimal.Decimal
	Tax               decimal.Decimal
	SPT               decimal.Decimal
	GrossProfit       decimal.Decimal
	Deductions        []types.Deduction
}

func (c *Calculator) marketplaceSide(in Input) (*sideCosts, error) {
	mp := in.marketplace()
	qty := decimal.NewFromInt(int64(in.Quantity))

	side := &sideCosts{Marketplace: mp}

	if in.MarketplaceCommissionPercent != nil {
		side.CommissionPercent = *in.MarketplaceCommissionPercent
		side.CommissionSource = CommissionSupplied
	} else {
		unitPrice := in.SalesRevenue.Div(qty)
		found, err := c.fees.CommissionFor(mp, in.Category, unitPrice)
		if err != nil {
			return nil, err
		}
		side.CommissionPercent = found.Percent
		side.CommissionSource = CommissionLookup
		side.Bracket = found.Bracket
	}

	perItem, err := c.fees.LogisticsFee(mp, in.LogisticsSize)
	if err != nil {
		return nil, err
	}

	side.Commission = types.RoundMoney(types.PercentOf(in.SalesRevenue, side.CommissionPercent))
	side.Logistics = perItem.Mul(qty)
	side.Tax = types.RoundMoney(in.SalesRevenue.Mul(c.opts.TaxRate))
	side.SPT = c.opts.SPTFeePerItem.Mul(qty)

	gross := in.SalesRevenue.
		Sub(in.ProductCost).
		Sub(side.Commission).
		Sub(side.Logistics).
		Sub(side.Tax)
	if c.opts.DeductSPTFee {
		gross = gross.Sub(side.SPT)
	}
	side.GrossProfit = gross

	side.Deductions = []types.Deduction{
		{
			Kind:    types.DeductionMarketplaceCommission,
			Label:   "Marketplace commission",
			Amount:  side.Commission,
			Formula: fmt.Sprintf("%s × %s%%", in.SalesRevenue, side.CommissionPercent),
		},
		{
			Kind:    types.DeductionLogistics,
			Label:   "Logistics",
			Amount:  side.Logistics,
			Formula: fmt.Sprintf("%s × %d (%s)", perItem, in.Quantity, in.LogisticsSize),
		},
		{
			Kind:          types.DeductionSPT,
			Label:         "SPT handling fee",
			Amount:        side.SPT,
			Formula:       fmt.Sprintf("%s × %d", c.opts.SPTFeePerItem, in.Quantity),
			Informational: !c.opts.DeductSPTFee,
		},
		{
			Kind:    types.DeductionTax,
			Label:   "Tax",
			Amount:  side.Tax,
			Formula: fmt.Sprintf("%s × %s", in.SalesRevenue, c.opts.TaxRate),
		},
	}

	return side, nil
}

// platformCharges is the tier's fulfillment fee
type platformCharges struct {
	Monthly    decimal.Decimal
	Variable   decimal.Decimal
	Total      decimal.Decimal
	Deductions []types.Deduction
}

// platformFees applies a tier to a revenue and gross-profit pair.
// Profit share floors its base at zero: a loss never produces a rebate.
func (c *Calculator) platformFees(tier *catalog.Tier, revenue, gross decimal.Decimal) platformCharges {
	var (
		base    decimal.Decimal
		formula string
	)
	switch tier.FeeBasis {
	case catalog.BasisNetProfit:
		base = decimal.Max(decimal.Zero, gross)
		formula = fmt.Sprintf("max(0, %s) × %s", gross, tier.Rate)
	default:
		base = revenue
		formula = fmt.Sprintf("%s × %s", revenue, tier.Rate)
	}
	variable := types.RoundMoney(base.Mul(tier.Rate))

	return platformCharges{
		Monthly:  tier.MonthlyFee,
		Variable: variable,
		Total:    tier.MonthlyFee.Add(variable),
		Deductions: []types.Deduction{
			{
				Kind:    types.DeductionMonthlyFee,
				Label:   tierLabel(tier) + " monthly fee",
				Amount:  tier.MonthlyFee,
				Formula: "flat, full month",
			},
			{
				Kind:    types.DeductionVariableFee,
				Label:   variableLabel(tier.FeeBasis),
				Amount:  variable,
				Formula: formula,
			},
		},
	}
}

func tierLabel(t *catalog.Tier) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

func variableLabel(b catalog.FeeBasis) string {
	if b == catalog.BasisNetProfit {
		return "Profit share"
	}
	return "Revenue commission"
}

// marginPercent is final/revenue*100, or zero when there is no revenue
func marginPercent(final, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return final.Div(revenue).Mul(types.Hundred()).Round(2)
}
