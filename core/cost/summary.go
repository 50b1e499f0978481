package cost

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// MarketplaceTotals aggregates the marketplace-side figures of one channel
type MarketplaceTotals struct {
	Marketplace           types.Marketplace `json:"marketplace"`
	Lines                 int               `json:"lines"`
	Quantity              int               `json:"quantity"`
	SalesRevenue          decimal.Decimal   `json:"sales_revenue"`
	ProductCost           decimal.Decimal   `json:"product_cost"`
	MarketplaceCommission decimal.Decimal   `json:"marketplace_commission"`
	LogisticsFee          decimal.Decimal   `json:"logistics_fee"`
	TaxAmount             decimal.Decimal   `json:"tax_amount"`
	SPTFee                decimal.Decimal   `json:"spt_fee"`
	GrossProfit           decimal.Decimal   `json:"gross_profit"`
}

func (t *MarketplaceTotals) add(in Input, side *sideCosts) {
	t.Lines++
	t.Quantity += in.Quantity
	t.SalesRevenue = t.SalesRevenue.Add(in.SalesRevenue)
	t.ProductCost = t.ProductCost.Add(in.ProductCost)
	t.MarketplaceCommission = t.MarketplaceCommission.Add(side.Commission)
	t.LogisticsFee = t.LogisticsFee.Add(side.Logistics)
	t.TaxAmount = t.TaxAmount.Add(side.Tax)
	t.SPTFee = t.SPTFee.Add(side.SPT)
	t.GrossProfit = t.GrossProfit.Add(side.GrossProfit)
}

// Summary is a period statement for one partner across marketplaces. The
// tier's fee is charged once over the combined figures, so the monthly fee
// is not repeated per line and profit share applies to the combined profit.
type Summary struct {
	TierID   string           `json:"tier_id"`
	FeeBasis catalog.FeeBasis `json:"fee_basis"`
	Currency types.Currency   `json:"currency"`

	ByMarketplace []MarketplaceTotals `json:"by_marketplace"`
	Totals        MarketplaceTotals   `json:"totals"`

	MonthlyFee          decimal.Decimal `json:"monthly_fee"`
	VariableFee         decimal.Decimal `json:"variable_fee"`
	TotalFulfillmentFee decimal.Decimal `json:"total_fulfillment_fee"`
	PartnerFinalProfit  decimal.Decimal `json:"partner_final_profit"`
	ProfitMarginPercent decimal.Decimal `json:"profit_margin_percent"`
}

// Summarize prices a set of sales under one tier. Each line's TierID is
// ignored in favour of tierID.
func (c *Calculator) Summarize(tierID string, lines []Input) (*Summary, error) {
	if strings.TrimSpace(tierID) == "" {
		return nil, errors.Input("tier_id is required")
	}
	if len(lines) == 0 {
		return nil, errors.Input("at least one line is required")
	}
	tier, err := c.tiers.Get(tierID)
	if err != nil {
		return nil, err
	}

	byMarketplace := make(map[types.Marketplace]*MarketplaceTotals)
	var totals MarketplaceTotals

	for i, in := range lines {
		in.TierID = tier.ID
		if err := in.Validate(); err != nil {
			return nil, wrapLine(i, err)
		}
		side, err := c.marketplaceSide(in)
		if err != nil {
			return nil, wrapLine(i, err)
		}
		mt, ok := byMarketplace[side.Marketplace]
		if !ok {
			mt = &MarketplaceTotals{Marketplace: side.Marketplace}
			byMarketplace[side.Marketplace] = mt
		}
		mt.add(in, side)
		totals.add(in, side)
	}

	platform := c.platformFees(tier, totals.SalesRevenue, totals.GrossProfit)

	s := &Summary{
		TierID:              tier.ID,
		FeeBasis:            tier.FeeBasis,
		Currency:            c.opts.Currency,
		Totals:              totals,
		MonthlyFee:          platform.Monthly,
		VariableFee:         platform.Variable,
		TotalFulfillmentFee: platform.Total,
		PartnerFinalProfit:  totals.GrossProfit.Sub(platform.Total),
	}
	s.ProfitMarginPercent = marginPercent(s.PartnerFinalProfit, totals.SalesRevenue)

	for _, mp := range types.Marketplaces() {
		if mt, ok := byMarketplace[mp]; ok {
			s.ByMarketplace = append(s.ByMarketplace, *mt)
		}
	}
	return s, nil
}

func wrapLine(i int, err error) error {
	if e, ok := errors.As(err); ok {
		return e.WithContext("line", i)
	}
	return err
}
