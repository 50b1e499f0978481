// Package output renders calculation results for people and machines.
package output

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// RenderResult writes one calculation
	RenderResult(w io.Writer, r *cost.Result) error

	// RenderSummary writes a multi-marketplace summary
	RenderSummary(w io.Writer, s *cost.Summary) error

	// RenderTiers writes the tier catalog
	RenderTiers(w io.Writer, tiers []catalog.Tier) error
}

// New returns the formatter for a format name
func New(format string) (Formatter, error) {
	switch Format(strings.ToLower(format)) {
	case FormatCLI, "":
		return NewCLIFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, errors.Inputf("unknown output format: %s", format)
	}
}

// FormatMoney groups thousands and keeps two decimals only when needed:
// 6794000 becomes "6,794,000" and -1234.5 becomes "-1,234.50".
func FormatMoney(d decimal.Decimal) string {
	var s string
	if d.Equal(d.Truncate(0)) {
		s = d.StringFixed(0)
	} else {
		s = d.StringFixed(2)
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + frac
}
