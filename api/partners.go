package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// handleRegisterPartner handles POST /partners
func (s *Server) handleRegisterPartner(c *gin.Context) {
	var reg workflow.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		s.writeError(c, errors.Inputf("invalid JSON: %v", err))
		return
	}
	p, err := s.workflow.RegisterPartner(c.Request.Context(), reg)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// handleGetMe handles GET /partners/me
func (s *Server) handleGetMe(c *gin.Context) {
	p, err := s.workflow.GetPartner(c.Request.Context(), claimsFrom(c).PartnerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// handlePartnerCalculate handles POST /partners/me/calculate. The partner's
// active tier replaces any tier in the body.
func (s *Server) handlePartnerCalculate(c *gin.Context) {
	p, err := s.workflow.ApprovedPartner(c.Request.Context(), claimsFrom(c).PartnerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	var in cost.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		s.writeError(c, errors.Inputf("invalid JSON: %v", err))
		return
	}
	in.TierID = p.PricingTier
	s.quote(c, in)
}

// handleSubmitUpgrade handles POST /partners/me/tier-upgrades
func (s *Server) handleSubmitUpgrade(c *gin.Context) {
	var body UpgradeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.writeError(c, errors.Inputf("invalid JSON: %v", err))
		return
	}
	req, err := s.workflow.SubmitUpgrade(c.Request.Context(), claimsFrom(c).PartnerID, body.RequestedTier, body.Reason)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// handleListMyUpgrades handles GET /partners/me/tier-upgrades
func (s *Server) handleListMyUpgrades(c *gin.Context) {
	reqs, err := s.workflow.ListUpgrades(c.Request.Context(), workflow.UpgradeFilter{PartnerID: claimsFrom(c).PartnerID})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UpgradeList{Requests: reqs, Count: len(reqs)})
}

// handleListPartners handles GET /admin/partners?status=
func (s *Server) handleListPartners(c *gin.Context) {
	status, err := workflow.ParseStatus(c.Query("status"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	partners, err := s.workflow.ListPartners(c.Request.Context(), status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PartnerList{Partners: partners, Count: len(partners)})
}

// handleListUpgrades handles GET /admin/tier-upgrades?status=
func (s *Server) handleListUpgrades(c *gin.Context) {
	status, err := workflow.ParseStatus(c.Query("status"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	reqs, err := s.workflow.ListUpgrades(c.Request.Context(), workflow.UpgradeFilter{
		PartnerID: c.Query("partner_id"),
		Status:    status,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UpgradeList{Requests: reqs, Count: len(reqs)})
}

// handleReviewPartner handles POST /admin/partners/:id/approve|reject
func (s *Server) handleReviewPartner(to workflow.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := s.reviewBody(c)
		if !ok {
			return
		}
		review := s.workflow.ApprovePartner
		if to == workflow.StatusRejected {
			review = s.workflow.RejectPartner
		}
		p, err := review(c.Request.Context(), c.Param("id"), claimsFrom(c).Subject, body.Note)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// handleReviewUpgrade handles POST /admin/tier-upgrades/:id/approve|reject
func (s *Server) handleReviewUpgrade(to workflow.Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := s.reviewBody(c)
		if !ok {
			return
		}
		review := s.workflow.ApproveUpgrade
		if to == workflow.StatusRejected {
			review = s.workflow.RejectUpgrade
		}
		req, err := review(c.Request.Context(), c.Param("id"), claimsFrom(c).Subject, body.Note)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// reviewBody decodes the optional review note; an empty body is allowed
func (s *Server) reviewBody(c *gin.Context) (ReviewBody, bool) {
	var body ReviewBody
	if err := c.ShouldBindJSON(&body); err != nil && err != io.EOF {
		s.writeError(c, errors.Inputf("invalid JSON: %v", err))
		return body, false
	}
	return body, true
}
