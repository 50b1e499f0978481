// Package workflow holds the partner lifecycle: registration review and
// tier-upgrade requests. Both follow the same machine, pending to approved
// or rejected, and both terminal states are final.
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// Status is the review state of a partner or an upgrade request
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further transition is possible
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus accepts a status name case-insensitively. The empty string
// parses to the empty status, which list filters treat as "any".
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", errors.Inputf("unknown status: %s", s)
	}
}

// transition validates a review decision
func transition(from, to Status) *errors.Error {
	if from != StatusPending {
		return errors.Newf(errors.TypeConflict, "cannot move from %s to %s", from, to)
	}
	if !to.Terminal() {
		return errors.Newf(errors.TypeConflict, "invalid target status %s", to)
	}
	return nil
}

// Partner is a seller using the fulfillment service
type Partner struct {
	ID           string     `json:"id" db:"id"`
	BusinessName string     `json:"business_name" db:"business_name"`
	ContactName  string     `json:"contact_name,omitempty" db:"contact_name"`
	Phone        string     `json:"phone,omitempty" db:"phone"`
	Email        string     `json:"email,omitempty" db:"email"`
	PricingTier  string     `json:"pricing_tier" db:"pricing_tier"`
	Status       Status     `json:"status" db:"status"`
	ReviewNote   string     `json:"review_note,omitempty" db:"review_note"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty" db:"approved_at"`
}

// UpgradeRequest asks for a partner's pricing tier to change
type UpgradeRequest struct {
	ID            string     `json:"id" db:"id"`
	PartnerID     string     `json:"partner_id" db:"partner_id"`
	CurrentTier   string     `json:"current_tier" db:"current_tier"`
	RequestedTier string     `json:"requested_tier" db:"requested_tier"`
	Reason        string     `json:"reason,omitempty" db:"reason"`
	Status        Status     `json:"status" db:"status"`
	ReviewNote    string     `json:"review_note,omitempty" db:"review_note"`
	ReviewedBy    string     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

// UpgradeFilter narrows ListUpgrades; zero fields match everything
type UpgradeFilter struct {
	PartnerID string
	Status    Status
}

// Store persists partners and upgrade requests.
//
// Get methods return a NOT_FOUND error for unknown ids. WithinTx runs fn
// atomically: if fn returns an error none of its writes are kept.
type Store interface {
	CreatePartner(ctx context.Context, p *Partner) error
	GetPartner(ctx context.Context, id string) (*Partner, error)
	UpdatePartner(ctx context.Context, p *Partner) error
	ListPartners(ctx context.Context, status Status) ([]*Partner, error)

	CreateUpgrade(ctx context.Context, r *UpgradeRequest) error
	GetUpgrade(ctx context.Context, id string) (*UpgradeRequest, error)
	UpdateUpgrade(ctx context.Context, r *UpgradeRequest) error
	ListUpgrades(ctx context.Context, filter UpgradeFilter) ([]*UpgradeRequest, error)

	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
