package workflow

import (
	"context"
	"time"
)

// EventType names a workflow decision
type EventType string

const (
	EventPartnerApproved     EventType = "partner.approved"
	EventPartnerRejected     EventType = "partner.rejected"
	EventTierUpgradeApproved EventType = "tier_upgrade.approved"
	EventTierUpgradeRejected EventType = "tier_upgrade.rejected"
)

// Event is published after a review decision is committed
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	PartnerID  string    `json:"partner_id"`
	RequestID  string    `json:"request_id,omitempty"`
	FromTier   string    `json:"from_tier,omitempty"`
	ToTier     string    `json:"to_tier,omitempty"`
	Note       string    `json:"note,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers workflow events to interested systems
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}
