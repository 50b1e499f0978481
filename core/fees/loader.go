package fees

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

//go:embed schedule.yaml
var defaultScheduleYAML []byte

type scheduleFile struct {
	Marketplaces map[string]*Table `yaml:"marketplaces"`
}

// Parse builds a validated schedule from a YAML document
func Parse(data []byte) (*Schedule, error) {
	var doc scheduleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Config("failed to decode fee schedule", err)
	}
	if len(doc.Marketplaces) == 0 {
		return nil, errors.Config("fee schedule has no marketplaces", nil)
	}

	tables := make(map[types.Marketplace]*Table, len(doc.Marketplaces))
	for name, t := range doc.Marketplaces {
		mp, ok := types.ParseMarketplace(name)
		if !ok {
			return nil, errors.Config("unknown marketplace in fee schedule: "+name, nil)
		}
		if t == nil {
			return nil, errors.Config("empty fee table for "+name, nil)
		}
		if err := ValidateTable(t); err != nil {
			return nil, errors.Config("invalid fee table for "+name, err)
		}
		tables[mp] = t
	}
	return NewSchedule(tables), nil
}

// ValidateTable checks bracket ordering, rate ranges and fee signs. Rates
// must not increase from base to premium, so moving a price into a higher
// bracket never raises its commission.
func ValidateTable(t *Table) error {
	if !t.Brackets.StandardAbove.IsPositive() {
		return fmt.Errorf("standard_above must be positive")
	}
	if !t.Brackets.PremiumAbove.GreaterThan(t.Brackets.StandardAbove) {
		return fmt.Errorf("premium_above %s must exceed standard_above %s", t.Brackets.PremiumAbove, t.Brackets.StandardAbove)
	}
	if len(t.Categories) == 0 {
		return fmt.Errorf("no categories")
	}
	hundred := types.Hundred()
	for name, r := range t.Categories {
		for _, p := range []decimal.Decimal{r.Premium, r.Standard, r.Base} {
			if p.IsNegative() || p.GreaterThan(hundred) {
				return fmt.Errorf("category %s: rate %s outside [0,100]", name, p)
			}
		}
		if r.Premium.GreaterThan(r.Standard) || r.Standard.GreaterThan(r.Base) {
			return fmt.Errorf("category %s: rates must not increase with price (%s/%s/%s)", name, r.Base, r.Standard, r.Premium)
		}
	}
	if len(t.Logistics) == 0 {
		return fmt.Errorf("no logistics sizes")
	}
	for size, fee := range t.Logistics {
		if fee.IsNegative() {
			return fmt.Errorf("logistics %s: fee must not be negative", size)
		}
	}
	return nil
}

// LoadFile reads a schedule from path
func LoadFile(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("failed to read fee schedule "+path, err)
	}
	return Parse(data)
}

// Default returns the built-in schedule
func Default() *Schedule {
	s, err := Parse(defaultScheduleYAML)
	if err != nil {
		panic("built-in fee schedule is invalid: " + err.Error())
	}
	return s
}

// Load returns the schedule at path, or the built-in schedule when path is empty
func Load(path string) (*Schedule, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
