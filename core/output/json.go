package output

import (
	"encoding/json"
	"io"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
)

// JSONFormatter writes indented JSON
type JSONFormatter struct {
	Indent string
}

// NewJSONFormatter creates a JSON formatter with two-space indentation
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{Indent: "  "}
}

func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

func (f *JSONFormatter) RenderResult(w io.Writer, r *cost.Result) error {
	return f.encode(w, r)
}

func (f *JSONFormatter) RenderSummary(w io.Writer, s *cost.Summary) error {
	return f.encode(w, s)
}

func (f *JSONFormatter) RenderTiers(w io.Writer, tiers []catalog.Tier) error {
	return f.encode(w, map[string]interface{}{"tiers": tiers})
}

func (f *JSONFormatter) encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	return enc.Encode(v)
}
