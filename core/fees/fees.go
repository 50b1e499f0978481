// Package fees - Marketplace fee schedules
// Category commission rates chosen by unit-price bracket, and flat
// per-item logistics fees by package size. Tables are data: they are
// loaded from YAML and injected wherever fees are computed.
package fees

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// SizeKey is a logistics package-size bucket
type SizeKey string

const (
	SizeSmall     SizeKey = "small"
	SizeMedium    SizeKey = "medium"
	SizeLarge     SizeKey = "large"
	SizeOversized SizeKey = "oversized"
)

// Brackets holds the unit-price boundaries. Both are strict lower bounds.
type Brackets struct {
	PremiumAbove  decimal.Decimal `json:"premium_above" yaml:"premium_above"`
	StandardAbove decimal.Decimal `json:"standard_above" yaml:"standard_above"`
}

// RateTriple holds a category's commission percentages per bracket
type RateTriple struct {
	Premium  decimal.Decimal `json:"premium" yaml:"premium"`
	Standard decimal.Decimal `json:"standard" yaml:"standard"`
	Base     decimal.Decimal `json:"base" yaml:"base"`
}

// Bracket names which rate of a triple applies
type Bracket string

const (
	BracketPremium  Bracket = "premium"
	BracketStandard Bracket = "standard"
	BracketBase     Bracket = "base"
)

// Table is one marketplace's published fee schedule
type Table struct {
	Brackets   Brackets                    `json:"brackets" yaml:"brackets"`
	Categories map[string]RateTriple       `json:"categories" yaml:"categories"`
	Logistics  map[SizeKey]decimal.Decimal `json:"logistics" yaml:"logistics"`
}

// BracketFor returns the bracket a unit price falls into
func (t *Table) BracketFor(price decimal.Decimal) Bracket {
	switch {
	case price.GreaterThan(t.Brackets.PremiumAbove):
		return BracketPremium
	case price.GreaterThan(t.Brackets.StandardAbove):
		return BracketStandard
	default:
		return BracketBase
	}
}

// Rate returns the percentage of the triple for a bracket
func (r RateTriple) Rate(b Bracket) decimal.Decimal {
	switch b {
	case BracketPremium:
		return r.Premium
	case BracketStandard:
		return r.Standard
	default:
		return r.Base
	}
}

// Commission is the outcome of a category lookup
type Commission struct {
	Marketplace types.Marketplace `json:"marketplace"`
	Category    string            `json:"category"`
	Price       decimal.Decimal   `json:"price"`
	Bracket     Bracket           `json:"bracket"`
	Percent     decimal.Decimal   `json:"percent"`
}

// Schedule holds the fee tables of every marketplace
type Schedule struct {
	tables map[types.Marketplace]*Table
}

// NewSchedule creates a schedule from per-marketplace tables
func NewSchedule(tables map[types.Marketplace]*Table) *Schedule {
	s := &Schedule{tables: make(map[types.Marketplace]*Table, len(tables))}
	for mp, t := range tables {
		s.tables[mp] = normalizeTable(t)
	}
	return s
}

func normalizeTable(t *Table) *Table {
	out := &Table{
		Brackets:   t.Brackets,
		Categories: make(map[string]RateTriple, len(t.Categories)),
		Logistics:  make(map[SizeKey]decimal.Decimal, len(t.Logistics)),
	}
	for k, v := range t.Categories {
		out.Categories[normalizeKey(k)] = v
	}
	for k, v := range t.Logistics {
		out.Logistics[SizeKey(normalizeKey(string(k)))] = v
	}
	return out
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Table returns a marketplace's table
func (s *Schedule) Table(mp types.Marketplace) (*Table, error) {
	t, ok := s.tables[mp]
	if !ok {
		return nil, errors.Inputf("no fee table for marketplace: %s", mp)
	}
	return t, nil
}

// Marketplaces returns the marketplaces with a table, sorted
func (s *Schedule) Marketplaces() []types.Marketplace {
	out := make([]types.Marketplace, 0, len(s.tables))
	for mp := range s.tables {
		out = append(out, mp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CommissionFor looks up the commission percentage for a category at a unit price
func (s *Schedule) CommissionFor(mp types.Marketplace, category string, price decimal.Decimal) (*Commission, error) {
	if price.IsNegative() {
		return nil, errors.Inputf("price must not be negative: %s", price)
	}
	t, err := s.Table(mp)
	if err != nil {
		return nil, err
	}
	key := normalizeKey(category)
	triple, ok := t.Categories[key]
	if !ok {
		return nil, errors.Inputf("unknown category for %s: %q", mp, category).WithContext("category", category)
	}
	b := t.BracketFor(price)
	return &Commission{
		Marketplace: mp,
		Category:    key,
		Price:       price,
		Bracket:     b,
		Percent:     triple.Rate(b),
	}, nil
}

// LogisticsFee returns the flat per-item fee for a package size
func (s *Schedule) LogisticsFee(mp types.Marketplace, size SizeKey) (decimal.Decimal, error) {
	t, err := s.Table(mp)
	if err != nil {
		return decimal.Zero, err
	}
	fee, ok := t.Logistics[SizeKey(normalizeKey(string(size)))]
	if !ok {
		return decimal.Zero, errors.Inputf("unknown logistics size for %s: %q", mp, size).WithContext("size", string(size))
	}
	return fee, nil
}

// Categories lists a marketplace's categories, sorted
func (s *Schedule) Categories(mp types.Marketplace) []string {
	t, ok := s.tables[mp]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(t.Categories))
	for c := range t.Categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
