package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/adapters/cache"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/types"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// handleListTiers handles GET /tiers. With ?revenue= only the tiers whose
// advisory band contains that monthly revenue are listed.
func (s *Server) handleListTiers(c *gin.Context) {
	tiers := s.calc.Tiers().List()
	if raw := c.Query("revenue"); raw != "" {
		revenue, err := decimal.NewFromString(raw)
		if err != nil {
			s.writeError(c, errors.Inputf("revenue must be a number, got %q", raw))
			return
		}
		tiers = s.calc.Tiers().Suggest(revenue)
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiers, "count": len(tiers)})
}

// handleGetTier handles GET /tiers/:id
func (s *Server) handleGetTier(c *gin.Context) {
	tier, err := s.calc.Tiers().Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tier)
}

// handleCommission handles GET /marketplaces/:mp/commission
func (s *Server) handleCommission(c *gin.Context) {
	mp, ok := types.ParseMarketplace(c.Param("mp"))
	if !ok {
		s.writeError(c, errors.Inputf("unknown marketplace: %s", c.Param("mp")))
		return
	}
	price, err := decimal.NewFromString(c.Query("price"))
	if err != nil {
		s.writeError(c, errors.Inputf("price must be a number, got %q", c.Query("price")))
		return
	}
	commission, err := s.calc.Fees().CommissionFor(mp, c.Query("category"), price)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, commission)
}

// handleCalculate handles POST /calculate
func (s *Server) handleCalculate(c *gin.Context) {
	var in cost.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, errors.Inputf("invalid JSON: %v", err))
		return
	}
	s.quote(c, in)
}

// quote prices in, serving repeated requests from the cache
func (s *Server) quote(c *gin.Context, in cost.Input) {
	ctx := c.Request.Context()
	start := time.Now()
	inputHash := computeInputHash(in, s.version, s.calc.Fingerprint())

	meta := ResponseMetadata{
		InputHash:     inputHash,
		EngineVersion: s.version,
		RequestID:     c.GetString(ctxRequestID),
	}

	var cached cost.Result
	hit, err := cache.GetJSON(ctx, s.cache, inputHash, &cached)
	if err != nil {
		s.logger.Warn("quote cache read failed", zap.String("input_hash", inputHash), zap.Error(err))
	}
	if hit {
		meta.Cached = true
		meta.DurationMs = time.Since(start).Milliseconds()
		c.JSON(http.StatusOK, CalculateResponse{Result: &cached, Metadata: meta})
		return
	}

	result, err := s.calc.ComputePartnerProfit(in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := cache.SetJSON(ctx, s.cache, inputHash, result); err != nil {
		s.logger.Warn("quote cache write failed", zap.String("input_hash", inputHash), zap.Error(err))
	}

	meta.DurationMs = time.Since(start).Milliseconds()
	c.JSON(http.StatusOK, CalculateResponse{Result: result, Metadata: meta})
}

// handleSummary handles POST /analytics/summary
func (s *Server) handleSummary(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.Inputf("invalid JSON: %v", err))
		return
	}
	summary, err := s.calc.Summarize(req.TierID, req.Lines)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
