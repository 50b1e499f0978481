package api

import (
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/cost"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
)

// CalculateResponse is the calculator breakdown plus request metadata
type CalculateResponse struct {
	*cost.Result
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced
type ResponseMetadata struct {
	InputHash     string `json:"input_hash"`
	EngineVersion string `json:"engine_version"`
	RequestID     string `json:"request_id"`
	Cached        bool   `json:"cached"`
	DurationMs    int64  `json:"duration_ms"`
}

// SummaryRequest is the body of POST /analytics/summary
type SummaryRequest struct {
	TierID string       `json:"tier_id"`
	Lines  []cost.Input `json:"lines"`
}

// UpgradeRequestBody is the body of POST /partners/me/tier-upgrades
type UpgradeRequestBody struct {
	RequestedTier string `json:"requested_tier"`
	Reason        string `json:"reason"`
}

// ReviewBody is the optional body of approve and reject actions
type ReviewBody struct {
	Note string `json:"note"`
}

// PartnerList wraps a partner listing
type PartnerList struct {
	Partners []*workflow.Partner `json:"partners"`
	Count    int                 `json:"count"`
}

// UpgradeList wraps an upgrade request listing
type UpgradeList struct {
	Requests []*workflow.UpgradeRequest `json:"requests"`
	Count    int                        `json:"count"`
}
