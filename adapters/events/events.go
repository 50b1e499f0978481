// Package events delivers workflow decisions to other systems.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
)

// New returns an AMQP publisher when events are enabled, otherwise a
// publisher that only logs
func New(cfg config.EventsConfig, logger *zap.Logger) (workflow.EventPublisher, error) {
	if !cfg.Enabled {
		return NewLogPublisher(logger), nil
	}
	p, err := DialAMQP(cfg.AMQPURL, cfg.Queue, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// LogPublisher writes events to the log
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a log-only publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e workflow.Event) error {
	p.logger.Info("workflow event",
		zap.String("event_id", e.ID),
		zap.String("type", string(e.Type)),
		zap.String("partner_id", e.PartnerID),
		zap.String("request_id", e.RequestID),
		zap.String("to_tier", e.ToTier))
	return nil
}

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []workflow.Event
}

func (r *Recorder) Publish(ctx context.Context, e workflow.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything published so far
func (r *Recorder) Events() []workflow.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]workflow.Event, len(r.events))
	copy(out, r.events)
	return out
}
