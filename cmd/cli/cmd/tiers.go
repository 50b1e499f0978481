package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/output"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

var tiersRevenue string

// tiersCmd lists the tier catalog
var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List pricing tiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := output.New(outputFormat)
		if err != nil {
			return err
		}
		calc, err := newCalculator()
		if err != nil {
			return err
		}
		tiers := calc.Tiers().List()
		if tiersRevenue != "" {
			revenue, err := parseAmount("revenue", tiersRevenue)
			if err != nil {
				return err
			}
			tiers = calc.Tiers().Suggest(revenue)
		}
		return formatter.RenderTiers(cmd.OutOrStdout(), tiers)
	},
}

var (
	commissionMarketplace string
	commissionCategory    string
	commissionPrice       string
)

// commissionCmd looks up a marketplace commission rate
var commissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Look up a marketplace commission rate",
	Long: `Look up the commission percentage a marketplace charges for a
category at a unit price.

Example:
  biznes commission --marketplace wildberries --category clothing --price 120000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mp, ok := types.ParseMarketplace(commissionMarketplace)
		if !ok {
			return errors.Inputf("unknown marketplace: %s", commissionMarketplace)
		}
		price, err := parseAmount("price", commissionPrice)
		if err != nil {
			return err
		}
		calc, err := newCalculator()
		if err != nil {
			return err
		}
		c, err := calc.Fees().CommissionFor(mp, commissionCategory, price)
		if err != nil {
			return err
		}
		cmd.Printf("%s / %s at %s: %s%% (%s bracket)\n",
			c.Marketplace, c.Category, output.FormatMoney(c.Price), c.Percent, c.Bracket)
		return nil
	},
}

func init() {
	tiersCmd.Flags().StringVar(&tiersRevenue, "revenue", "", "only tiers suited to this monthly revenue")
	tiersCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")

	commissionCmd.Flags().StringVarP(&commissionMarketplace, "marketplace", "m", "uzum", "marketplace")
	commissionCmd.Flags().StringVar(&commissionCategory, "category", "", "product category (required)")
	commissionCmd.Flags().StringVar(&commissionPrice, "price", "", "unit price (required)")
	_ = commissionCmd.MarkFlagRequired("category")
	_ = commissionCmd.MarkFlagRequired("price")
}
