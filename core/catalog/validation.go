// Package catalog - Catalog validation
// Ensures every tier is internally consistent before it can be priced.
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// ValidationRule is a tier validation rule
type ValidationRule func(*Tier) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateFeeBasis,
		validateRate,
		validateMonthlyFee,
		validateRevenueBand,
	}
}

// Validate checks a catalog against validation rules
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error

	for _, id := range c.order {
		tier := c.tiers[id]
		for _, rule := range rules {
			if err := rule(tier); err != nil {
				errs = append(errs, fmt.Errorf("tier %s: %w", tier.ID, err))
			}
		}
	}

	return errs
}

// Check runs the default rules and folds failures into one config error
func (c *Catalog) Check() error {
	errs := c.Validate(DefaultValidationRules())
	if len(errs) == 0 {
		return nil
	}
	e := errors.Config(fmt.Sprintf("tier catalog has %d validation errors", len(errs)), errs[0])
	return e.WithContext("errors", len(errs))
}

func validateFeeBasis(t *Tier) error {
	if !t.FeeBasis.Valid() {
		return fmt.Errorf("fee_basis must be %q or %q, got %q", BasisRevenue, BasisNetProfit, t.FeeBasis)
	}
	return nil
}

func validateRate(t *Tier) error {
	if t.Rate.IsNegative() || t.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("rate must be within [0,1], got %s", t.Rate)
	}
	return nil
}

func validateMonthlyFee(t *Tier) error {
	if t.MonthlyFee.IsNegative() {
		return fmt.Errorf("monthly_fee must not be negative, got %s", t.MonthlyFee)
	}
	return nil
}

func validateRevenueBand(t *Tier) error {
	if t.MinRevenue.IsNegative() {
		return fmt.Errorf("min_revenue must not be negative")
	}
	if t.MaxRevenue != nil && t.MaxRevenue.LessThan(t.MinRevenue) {
		return fmt.Errorf("max_revenue %s is below min_revenue %s", t.MaxRevenue, t.MinRevenue)
	}
	return nil
}
