package cost

import (
	"testing"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/fees"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

func TestSummarizeChargesMonthlyFeeOnce(t *testing.T) {
	calc := newTestCalculator()
	lines := []Input{
		{
			SalesRevenue:                 d("10000000"),
			ProductCost:                  d("4000000"),
			Quantity:                     10,
			Marketplace:                  types.Uzum,
			MarketplaceCommissionPercent: pct("10"),
			LogisticsSize:                fees.SizeSmall,
		},
		{
			SalesRevenue:                 d("5000000"),
			ProductCost:                  d("2000000"),
			Quantity:                     5,
			Marketplace:                  types.Wildberries,
			MarketplaceCommissionPercent: pct("10"),
			LogisticsSize:                fees.SizeSmall,
		},
		{
			SalesRevenue:                 d("1000000"),
			ProductCost:                  d("500000"),
			Quantity:                     1,
			Marketplace:                  types.Uzum,
			MarketplaceCommissionPercent: pct("10"),
			LogisticsSize:                fees.SizeSmall,
		},
	}

	s, err := calc.Summarize("business_standard", lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !s.MonthlyFee.Equal(d("5000000")) {
		t.Errorf("expected a single monthly fee of 5000000, got %s", s.MonthlyFee)
	}
	if s.Totals.Lines != 3 || s.Totals.Quantity != 16 {
		t.Errorf("expected 3 lines and 16 items, got %d and %d", s.Totals.Lines, s.Totals.Quantity)
	}
	if !s.Totals.SalesRevenue.Equal(d("16000000")) {
		t.Errorf("expected total revenue 16000000, got %s", s.Totals.SalesRevenue)
	}

	if len(s.ByMarketplace) != 2 {
		t.Fatalf("expected 2 marketplaces, got %d", len(s.ByMarketplace))
	}
	if s.ByMarketplace[0].Marketplace != types.Uzum || s.ByMarketplace[0].Lines != 2 {
		t.Errorf("expected uzum first with 2 lines, got %s with %d", s.ByMarketplace[0].Marketplace, s.ByMarketplace[0].Lines)
	}

	// Profit share is taken from the combined gross profit
	want := s.Totals.GrossProfit.Mul(d("0.20")).Round(2)
	if !s.VariableFee.Equal(want) {
		t.Errorf("expected variable fee %s, got %s", want, s.VariableFee)
	}
	if !s.PartnerFinalProfit.Equal(s.Totals.GrossProfit.Sub(s.TotalFulfillmentFee)) {
		t.Error("final profit must equal gross profit minus total fee")
	}
}

func TestSummarizeIgnoresLineTier(t *testing.T) {
	s, err := newTestCalculator().Summarize("starter_pro", []Input{{
		SalesRevenue:                 d("1000000"),
		Quantity:                     1,
		TierID:                       "enterprise_elite",
		MarketplaceCommissionPercent: pct("5"),
		LogisticsSize:                fees.SizeSmall,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TierID != "starter_pro" {
		t.Errorf("expected starter_pro, got %s", s.TierID)
	}
}

func TestSummarizeErrors(t *testing.T) {
	calc := newTestCalculator()

	if _, err := calc.Summarize("starter_pro", nil); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected INPUT_ERROR for no lines, got %v", err)
	}

	good := Input{SalesRevenue: d("1000"), Quantity: 1, MarketplaceCommissionPercent: pct("5"), LogisticsSize: fees.SizeSmall}
	if _, err := calc.Summarize("missing", []Input{good}); !errors.IsType(err, errors.TypeTierNotFound) {
		t.Errorf("expected TIER_NOT_FOUND, got %v", err)
	}

	bad := good
	bad.Quantity = 0
	_, err := calc.Summarize("starter_pro", []Input{good, bad})
	e, ok := errors.As(err)
	if !ok || e.Type != errors.TypeInput {
		t.Fatalf("expected INPUT_ERROR, got %v", err)
	}
	if e.Context["line"] != 1 {
		t.Errorf("expected line 1 in context, got %v", e.Context["line"])
	}
}
