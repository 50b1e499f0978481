package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

// AMQPPublisher publishes events as persistent JSON messages to a durable
// queue on the default exchange. A connection or channel closed by the
// broker is re-dialed on the next Publish.
type AMQPPublisher struct {
	mu         sync.Mutex
	url        string
	conn       *amqp.Connection
	channel    *amqp.Channel
	connClosed chan *amqp.Error
	chanClosed chan *amqp.Error
	queue      string
	logger     *zap.Logger
}

// DialAMQP connects to the broker and declares the queue
func DialAMQP(url, queue string, logger *zap.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &AMQPPublisher{url: url, queue: queue, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect dials, opens a channel and declares the queue. Callers hold p.mu
// or own p exclusively.
func (p *AMQPPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to connect to rabbitmq", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(errors.TypeInternal, "failed to open channel", err)
	}
	_, err = ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return errors.Wrap(errors.TypeInternal, "failed to declare queue", err).WithContext("queue", p.queue)
	}

	// the library sends at most one error and then closes each channel
	p.connClosed = conn.NotifyClose(make(chan *amqp.Error, 1))
	p.chanClosed = ch.NotifyClose(make(chan *amqp.Error, 1))
	p.conn = conn
	p.channel = ch
	return nil
}

// broken reports whether the current channel can no longer publish
func (p *AMQPPublisher) broken() bool {
	if p.channel == nil {
		return true
	}
	select {
	case <-p.connClosed:
		return true
	case <-p.chanClosed:
		return true
	default:
		return false
	}
}

// reconnect drops whatever is left of the old connection and dials again
func (p *AMQPPublisher) reconnect(reason string) error {
	p.logger.Warn("amqp connection lost, reconnecting",
		zap.String("queue", p.queue),
		zap.String("reason", reason))
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.channel, p.conn = nil, nil
	return p.connect()
}

// Publish sends one event
func (p *AMQPPublisher) Publish(ctx context.Context, e workflow.Event) error {
	msg, err := encode(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken() {
		if err := p.reconnect("closed"); err != nil {
			return err
		}
	}

	err = p.publish(ctx, msg)
	if err == amqp.ErrClosed {
		if rerr := p.reconnect("publish on closed channel"); rerr != nil {
			return rerr
		}
		err = p.publish(ctx, msg)
	}
	if err != nil {
		return errors.Wrap(errors.TypeInternal, "failed to publish event", err).WithContext("type", string(e.Type))
	}

	p.logger.Debug("event published",
		zap.String("queue", p.queue),
		zap.String("type", string(e.Type)),
		zap.String("event_id", e.ID))
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, msg amqp.Publishing) error {
	return p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		msg,
	)
}

// Close shuts the channel and connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	chErr := p.channel.Close()
	connErr := p.conn.Close()
	p.channel, p.conn = nil, nil
	if chErr != nil && chErr != amqp.ErrClosed {
		return chErr
	}
	if connErr != nil && connErr != amqp.ErrClosed {
		return connErr
	}
	return nil
}

func encode(e workflow.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, errors.Wrap(errors.TypeInternal, "failed to marshal event", err)
	}
	ts := e.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.ID,
		Type:         string(e.Type),
		Timestamp:    ts,
		Body:         body,
	}, nil
}
