package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/output"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

var summaryTier string

// salesFile is the on-disk form of a period's sales. JSON files parse too.
type salesFile struct {
	TierID string       `yaml:"tier_id"`
	Lines  []cost.Input `yaml:"lines"`
}

// summaryCmd prices a period of sales across marketplaces
var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Summarize a period of sales across marketplaces",
	Long: `Price every sale in a YAML or JSON file under one tier. The tier's
monthly fee is charged once for the whole period.

File format:
  tier_id: business_standard
  lines:
    - marketplace: uzum
      sales_revenue: 10000000
      product_cost: 4000000
      quantity: 10
      category: clothing
      logistics_size: small`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryTier, "tier", "t", "", "pricing tier id (overrides the file)")
	summaryCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(errors.TypeInput, err, "cannot read %s", args[0])
	}
	var file salesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(errors.TypeInput, err, "cannot parse %s", args[0])
	}
	tier := file.TierID
	if summaryTier != "" {
		tier = summaryTier
	}

	formatter, err := output.New(outputFormat)
	if err != nil {
		return err
	}
	calc, err := newCalculator()
	if err != nil {
		return err
	}
	summary, err := calc.Summarize(tier, file.Lines)
	if err != nil {
		return err
	}
	return formatter.RenderSummary(cmd.OutOrStdout(), summary)
}
