package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#7928CA", Dark: "#7D56F4"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#12B76A", Dark: "#73F59F"}
	colorDanger  = lipgloss.AdaptiveColor{Light: "#D92D20", Dark: "#F97066"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#98A2B3", Dark: "#667085"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Width(34)

	amountStyle = lipgloss.NewStyle().
			Width(16).
			Align(lipgloss.Right)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	profitStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSuccess)

	lossStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorDanger)

	separator = mutedStyle.Render(strings.Repeat("─", 52))
)

// CLIFormatter renders a waterfall table for terminals
type CLIFormatter struct{}

// NewCLIFormatter creates a terminal formatter
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{}
}

func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

func (f *CLIFormatter) RenderResult(w io.Writer, r *cost.Result) error {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("%s · %s · %s", r.TierID, r.Marketplace, r.FeeBasis)))
	fmt.Fprintln(&b, separator)
	row(&b, "Sales revenue", r.SalesRevenue, "")
	row(&b, "Product cost", r.ProductCost.Neg(), "")
	for _, d := range r.Breakdown[:len(r.Breakdown)-2] {
		note := d.Formula
		if d.Informational {
			note = "not deducted"
		}
		row(&b, d.Label, d.Amount.Neg(), note)
	}
	fmt.Fprintln(&b, separator)
	row(&b, "Gross profit", r.GrossProfit, "")
	for _, d := range r.Breakdown[len(r.Breakdown)-2:] {
		row(&b, d.Label, d.Amount.Neg(), d.Formula)
	}
	fmt.Fprintln(&b, separator)
	result(&b, "Partner final profit", r.PartnerFinalProfit, r.Currency.String())
	fmt.Fprintln(&b, labelStyle.Render("Profit margin")+amountStyle.Render(r.ProfitMarginPercent.StringFixed(2)+"%"))
	if r.IsLoss() {
		fmt.Fprintln(&b, lossStyle.Render("Fulfillment fees exceed gross profit"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *CLIFormatter) RenderSummary(w io.Writer, s *cost.Summary) error {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("Summary · %s · %s", s.TierID, s.FeeBasis)))
	fmt.Fprintln(&b, separator)
	for _, mt := range s.ByMarketplace {
		fmt.Fprintln(&b, mutedStyle.Render(fmt.Sprintf("%s (%d lines, %d items)", mt.Marketplace, mt.Lines, mt.Quantity)))
		row(&b, "  Revenue", mt.SalesRevenue, "")
		row(&b, "  Gross profit", mt.GrossProfit, "")
	}
	fmt.Fprintln(&b, separator)
	row(&b, "Total revenue", s.Totals.SalesRevenue, "")
	row(&b, "Total gross profit", s.Totals.GrossProfit, "")
	row(&b, "Monthly fee", s.MonthlyFee.Neg(), "charged once")
	row(&b, "Variable fee", s.VariableFee.Neg(), "")
	fmt.Fprintln(&b, separator)
	result(&b, "Partner final profit", s.PartnerFinalProfit, s.Currency.String())
	fmt.Fprintln(&b, labelStyle.Render("Profit margin")+amountStyle.Render(s.ProfitMarginPercent.StringFixed(2)+"%"))

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *CLIFormatter) RenderTiers(w io.Writer, tiers []catalog.Tier) error {
	var b strings.Builder

	fmt.Fprintln(&b, titleStyle.Render("Pricing tiers"))
	fmt.Fprintln(&b, separator)
	for _, t := range tiers {
		rate := t.Rate.Mul(decimal.NewFromInt(100)).String() + "%"
		basis := "of revenue"
		if t.FeeBasis == catalog.BasisNetProfit {
			basis = "of profit"
		}
		band := FormatMoney(t.MinRevenue) + "+"
		if t.MaxRevenue != nil {
			band = FormatMoney(t.MinRevenue) + " – " + FormatMoney(*t.MaxRevenue)
		}
		fmt.Fprintln(&b, labelStyle.Render(t.ID)+
			amountStyle.Render(FormatMoney(t.MonthlyFee))+
			"  "+rate+" "+basis+
			"  "+mutedStyle.Render(band))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func row(b *strings.Builder, label string, amount decimal.Decimal, note string) {
	line := labelStyle.Render(label) + amountStyle.Render(FormatMoney(amount))
	if note != "" {
		line += "  " + mutedStyle.Render(note)
	}
	fmt.Fprintln(b, line)
}

func result(b *strings.Builder, label string, amount decimal.Decimal, currency string) {
	style := profitStyle
	if amount.IsNegative() {
		style = lossStyle
	}
	fmt.Fprintln(b, labelStyle.Render(label)+style.Width(16).Align(lipgloss.Right).Render(FormatMoney(amount))+" "+currency)
}
