package cost

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/fees"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
)

// pricingData is everything besides the input that a result depends on
type pricingData struct {
	Tiers         []catalog.Tier                    `json:"tiers"`
	Fees          map[types.Marketplace]*fees.Table `json:"fees"`
	Currency      types.Currency                    `json:"currency"`
	TaxRate       string                            `json:"tax_rate"`
	SPTFeePerItem string                            `json:"spt_fee_per_item"`
	DeductSPTFee  bool                              `json:"deduct_spt_fee"`
}

// fingerprint hashes the catalog, fee schedule and options. Map keys are
// sorted by encoding/json, so equal data always hashes the same.
func fingerprint(tiers *catalog.Catalog, schedule *fees.Schedule, opts Options) string {
	data := pricingData{
		Fees:          make(map[types.Marketplace]*fees.Table),
		Currency:      opts.Currency,
		TaxRate:       opts.TaxRate.String(),
		SPTFeePerItem: opts.SPTFeePerItem.String(),
		DeductSPTFee:  opts.DeductSPTFee,
	}
	if tiers != nil {
		data.Tiers = tiers.List()
	}
	if schedule != nil {
		for _, mp := range schedule.Marketplaces() {
			if t, err := schedule.Table(mp); err == nil {
				data.Fees[mp] = t
			}
		}
	}

	raw, _ := json.Marshal(data)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Fingerprint identifies the pricing data the calculator was built with.
// Two calculators with equal fingerprints return equal results.
func (c *Calculator) Fingerprint() string {
	return c.fingerprint
}
