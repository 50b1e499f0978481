// Package types - Money, marketplace and deduction types shared by the
// catalog, fee schedule and calculator.
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyUZS Currency = "UZS"
	CurrencyUSD Currency = "USD"
	CurrencyRUB Currency = "RUB"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Marketplace identifies a sales channel a partner sells through
type Marketplace string

const (
	Uzum        Marketplace = "uzum"
	Wildberries Marketplace = "wildberries"
	Yandex      Marketplace = "yandex"
	Ozon        Marketplace = "ozon"
)

// Marketplaces lists every supported marketplace in display order
func Marketplaces() []Marketplace {
	return []Marketplace{Uzum, Wildberries, Yandex, Ozon}
}

// ParseMarketplace normalizes a marketplace name
func ParseMarketplace(s string) (Marketplace, bool) {
	m := Marketplace(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Marketplaces() {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// DeductionKind names a line in the cost waterfall
type DeductionKind string

const (
	DeductionMarketplaceCommission DeductionKind = "marketplace_commission"
	DeductionLogistics             DeductionKind = "logistics"
	DeductionSPT                   DeductionKind = "spt_fee"
	DeductionTax                   DeductionKind = "tax"
	DeductionMonthlyFee            DeductionKind = "tier_monthly_fee"
	DeductionVariableFee           DeductionKind = "tier_variable_fee"
)

// Deduction is one line of a calculation breakdown
type Deduction struct {
	// Kind identifies the deduction
	Kind DeductionKind `json:"kind"`

	// Label is a human-readable label
	Label string `json:"label"`

	// Amount is the deducted amount
	Amount decimal.Decimal `json:"amount"`

	// Formula describes how the amount was calculated
	Formula string `json:"formula"`

	// Informational lines are reported but not subtracted
	Informational bool `json:"informational,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// Hundred returns 100 as a decimal
func Hundred() decimal.Decimal {
	return hundred
}

// PercentOf returns amount * percent / 100
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// RoundMoney rounds to the smallest settlement unit
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
