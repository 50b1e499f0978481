package cmd

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/fees"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/output"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/logging"
)

var (
	outputFormat string

	calcRevenue     string
	calcCost        string
	calcQuantity    int
	calcTier        string
	calcMarketplace string
	calcRate        string
	calcSize        string
	calcCategory    string
)

// calcCmd prices one sale
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate partner profit for a sale",
	Long: `Run the full fee waterfall for one sale.

Pass --rate to use a known marketplace commission percentage, or
--category to look it up from the marketplace fee table by unit price.

Examples:
  biznes calc --revenue 20000000 --cost 12000000 --tier starter_pro --rate 3 --size medium
  biznes calc --revenue 600000 --qty 2 --tier business_standard --category electronics --marketplace ozon
  biznes calc --revenue 1000000 --tier professional_plus --rate 12 --format json`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVar(&calcRevenue, "revenue", "", "sales revenue (required)")
	calcCmd.Flags().StringVar(&calcCost, "cost", "0", "product cost")
	calcCmd.Flags().IntVar(&calcQuantity, "qty", 1, "number of items sold")
	calcCmd.Flags().StringVarP(&calcTier, "tier", "t", "", "pricing tier id (required)")
	calcCmd.Flags().StringVarP(&calcMarketplace, "marketplace", "m", "uzum", "marketplace (uzum, wildberries, yandex, ozon)")
	calcCmd.Flags().StringVar(&calcRate, "rate", "", "marketplace commission percent, e.g. 3 for 3%")
	calcCmd.Flags().StringVar(&calcSize, "size", "small", "logistics size (small, medium, large, oversized)")
	calcCmd.Flags().StringVar(&calcCategory, "category", "", "product category for rate lookup")
	calcCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
	_ = calcCmd.MarkFlagRequired("revenue")
	_ = calcCmd.MarkFlagRequired("tier")
}

func runCalc(cmd *cobra.Command, args []string) error {
	in, err := calcInput()
	if err != nil {
		return err
	}
	formatter, err := output.New(outputFormat)
	if err != nil {
		return err
	}
	calc, err := newCalculator()
	if err != nil {
		return err
	}

	logging.Debug("calculating")
	result, err := calc.ComputePartnerProfit(in)
	if err != nil {
		return err
	}
	return formatter.RenderResult(cmd.OutOrStdout(), result)
}

func calcInput() (cost.Input, error) {
	revenue, err := parseAmount("revenue", calcRevenue)
	if err != nil {
		return cost.Input{}, err
	}
	productCost, err := parseAmount("cost", calcCost)
	if err != nil {
		return cost.Input{}, err
	}
	in := cost.Input{
		SalesRevenue:  revenue,
		ProductCost:   productCost,
		Quantity:      calcQuantity,
		TierID:        calcTier,
		Marketplace:   types.Marketplace(calcMarketplace),
		LogisticsSize: fees.SizeKey(calcSize),
		Category:      calcCategory,
	}
	if calcRate != "" {
		rate, err := parseAmount("rate", calcRate)
		if err != nil {
			return cost.Input{}, err
		}
		in.MarketplaceCommissionPercent = &rate
	}
	return in, nil
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, errors.Inputf("--%s must be a number, got %q", flag, value)
	}
	return d, nil
}
