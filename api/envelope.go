package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
)

// quoteEnvelope is the normalized form of a calculation request. Requests
// that differ only in spelling (case, whitespace, 3 vs 3.0) hash the same.
type quoteEnvelope struct {
	SalesRevenue string `json:"sales_revenue"`
	ProductCost  string `json:"product_cost"`
	Quantity     int    `json:"quantity"`
	TierID       string `json:"tier_id"`
	Marketplace  string `json:"marketplace"`
	Rate         string `json:"rate,omitempty"`
	Size         string `json:"size"`
	Category     string `json:"category,omitempty"`
	Engine       string `json:"engine"`
	Pricing      string `json:"pricing"`
}

func normalize(in cost.Input, engineVersion, pricing string) quoteEnvelope {
	mp := strings.ToLower(strings.TrimSpace(string(in.Marketplace)))
	if mp == "" {
		mp = string(types.Uzum)
	}
	env := quoteEnvelope{
		SalesRevenue: in.SalesRevenue.String(),
		ProductCost:  in.ProductCost.String(),
		Quantity:     in.Quantity,
		TierID:       strings.TrimSpace(in.TierID),
		Marketplace:  mp,
		Size:         strings.ToLower(strings.TrimSpace(string(in.LogisticsSize))),
		Engine:       engineVersion,
		Pricing:      pricing,
	}
	if in.MarketplaceCommissionPercent != nil {
		env.Rate = in.MarketplaceCommissionPercent.String()
	} else {
		env.Category = strings.ToLower(strings.TrimSpace(in.Category))
	}
	return env
}

// computeInputHash returns a deterministic hash of the normalized request
// and the fingerprint of the pricing data that will price it
func computeInputHash(in cost.Input, engineVersion, pricing string) string {
	data, _ := json.Marshal(normalize(in, engineVersion, pricing))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
