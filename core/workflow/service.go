package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/catalog"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// Registration is the data a new partner submits
type Registration struct {
	BusinessName string `json:"business_name"`
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	TierID       string `json:"tier_id"`
}

// Service drives partner review and tier upgrades
type Service struct {
	store  Store
	tiers  *catalog.Catalog
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a workflow service. events may be nil, in which case
// decisions are not published.
func NewService(store Store, tiers *catalog.Catalog, events EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		tiers:  tiers,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RegisterPartner records a new partner awaiting review
func (s *Service) RegisterPartner(ctx context.Context, reg Registration) (*Partner, error) {
	if strings.TrimSpace(reg.BusinessName) == "" {
		return nil, errors.Input("business_name is required")
	}
	tierID, err := s.knownTier(reg.TierID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &Partner{
		ID:           uuid.NewString(),
		BusinessName: strings.TrimSpace(reg.BusinessName),
		ContactName:  reg.ContactName,
		Phone:        reg.Phone,
		Email:        reg.Email,
		PricingTier:  tierID,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreatePartner(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("partner registered",
		zap.String("partner_id", p.ID),
		zap.String("tier", p.PricingTier))
	return p, nil
}

// GetPartner returns one partner
func (s *Service) GetPartner(ctx context.Context, id string) (*Partner, error) {
	return s.store.GetPartner(ctx, id)
}

// ListPartners lists partners, optionally filtered by status
func (s *Service) ListPartners(ctx context.Context, status Status) ([]*Partner, error) {
	return s.store.ListPartners(ctx, status)
}

// ApprovedPartner returns the partner if it may use partner features
func (s *Service) ApprovedPartner(ctx context.Context, id string) (*Partner, error) {
	p, err := s.store.GetPartner(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusApproved {
		return nil, errors.Forbidden("partner is not approved")
	}
	return p, nil
}

// ApprovePartner activates a pending partner
func (s *Service) ApprovePartner(ctx context.Context, id, actor, note string) (*Partner, error) {
	return s.reviewPartner(ctx, id, StatusApproved, actor, note)
}

// RejectPartner declines a pending partner
func (s *Service) RejectPartner(ctx context.Context, id, actor, note string) (*Partner, error) {
	return s.reviewPartner(ctx, id, StatusRejected, actor, note)
}

func (s *Service) reviewPartner(ctx context.Context, id string, to Status, actor, note string) (*Partner, error) {
	var p *Partner
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.store.GetPartner(ctx, id)
		if err != nil {
			return err
		}
		if err := transition(p.Status, to); err != nil {
			return err.WithContext("partner_id", id)
		}
		now := s.now()
		p.Status = to
		p.ReviewNote = note
		p.UpdatedAt = now
		if to == StatusApproved {
			p.ApprovedAt = &now
		}
		return s.store.UpdatePartner(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	eventType := EventPartnerApproved
	if to == StatusRejected {
		eventType = EventPartnerRejected
	}
	s.logger.Info("partner reviewed",
		zap.String("partner_id", p.ID),
		zap.String("status", string(p.Status)),
		zap.String("actor", actor))
	s.publish(ctx, Event{
		Type:      eventType,
		PartnerID: p.ID,
		ToTier:    p.PricingTier,
		Note:      note,
		Actor:     actor,
	})
	return p, nil
}

// SubmitUpgrade files a tier change request for an approved partner.
// A partner may have at most one pending request.
func (s *Service) SubmitUpgrade(ctx context.Context, partnerID, requestedTier, reason string) (*UpgradeRequest, error) {
	tierID, err := s.knownTier(requestedTier)
	if err != nil {
		return nil, err
	}

	var req *UpgradeRequest
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.ApprovedPartner(ctx, partnerID)
		if err != nil {
			return err
		}
		if p.PricingTier == tierID {
			return errors.Inputf("partner is already on tier %s", tierID)
		}
		pending, err := s.store.ListUpgrades(ctx, UpgradeFilter{PartnerID: partnerID, Status: StatusPending})
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return errors.Conflict("an upgrade request is already pending").
				WithContext("request_id", pending[0].ID)
		}

		req = &UpgradeRequest{
			ID:            uuid.NewString(),
			PartnerID:     partnerID,
			CurrentTier:   p.PricingTier,
			RequestedTier: tierID,
			Reason:        reason,
			Status:        StatusPending,
			CreatedAt:     s.now(),
		}
		return s.store.CreateUpgrade(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tier upgrade requested",
		zap.String("request_id", req.ID),
		zap.String("partner_id", partnerID),
		zap.String("from", req.CurrentTier),
		zap.String("to", req.RequestedTier))
	return req, nil
}

// GetUpgrade returns one request
func (s *Service) GetUpgrade(ctx context.Context, id string) (*UpgradeRequest, error) {
	return s.store.GetUpgrade(ctx, id)
}

// ListUpgrades lists requests matching the filter
func (s *Service) ListUpgrades(ctx context.Context, filter UpgradeFilter) ([]*UpgradeRequest, error) {
	return s.store.ListUpgrades(ctx, filter)
}

// ApproveUpgrade switches the partner to the requested tier. The tier change
// and the request decision are committed together.
func (s *Service) ApproveUpgrade(ctx context.Context, id, actor, note string) (*UpgradeRequest, error) {
	return s.reviewUpgrade(ctx, id, StatusApproved, actor, note)
}

// RejectUpgrade declines a request; the partner keeps its tier
func (s *Service) RejectUpgrade(ctx context.Context, id, actor, note string) (*UpgradeRequest, error) {
	return s.reviewUpgrade(ctx, id, StatusRejected, actor, note)
}

func (s *Service) reviewUpgrade(ctx context.Context, id string, to Status, actor, note string) (*UpgradeRequest, error) {
	var req *UpgradeRequest
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.store.GetUpgrade(ctx, id)
		if err != nil {
			return err
		}
		if err := transition(req.Status, to); err != nil {
			return err.WithContext("request_id", id)
		}

		now := s.now()
		if to == StatusApproved {
			if !s.tiers.Has(req.RequestedTier) {
				return errors.TierNotFound(req.RequestedTier)
			}
			p, err := s.store.GetPartner(ctx, req.PartnerID)
			if err != nil {
				return err
			}
			p.PricingTier = req.RequestedTier
			p.UpdatedAt = now
			if err := s.store.UpdatePartner(ctx, p); err != nil {
				return err
			}
		}

		req.Status = to
		req.ReviewNote = note
		req.ReviewedBy = actor
		req.ReviewedAt = &now
		return s.store.UpdateUpgrade(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	eventType := EventTierUpgradeApproved
	if to == StatusRejected {
		eventType = EventTierUpgradeRejected
	}
	s.logger.Info("tier upgrade reviewed",
		zap.String("request_id", req.ID),
		zap.String("partner_id", req.PartnerID),
		zap.String("status", string(req.Status)),
		zap.String("actor", actor))
	s.publish(ctx, Event{
		Type:      eventType,
		PartnerID: req.PartnerID,
		RequestID: req.ID,
		FromTier:  req.CurrentTier,
		ToTier:    req.RequestedTier,
		Note:      note,
		Actor:     actor,
	})
	return req, nil
}

// publish sends an event after commit; the decision stands even if
// delivery fails
func (s *Service) publish(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	e.ID = uuid.NewString()
	e.OccurredAt = s.now()
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish workflow event",
			zap.String("event", string(e.Type)),
			zap.String("partner_id", e.PartnerID),
			zap.Error(err))
	}
}

func (s *Service) knownTier(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.Input("tier_id is required")
	}
	if !s.tiers.Has(id) {
		return "", errors.Wrapf(errors.TypeInput, errors.TierNotFound(id), "unknown tier: %s", id)
	}
	return id, nil
}
