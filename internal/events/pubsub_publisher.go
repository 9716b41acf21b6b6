package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/resilience"
)

// Message attribute keys.
const (
	AttrEventType = "event_type"
	AttrLineID    = "line_id"
)

// PubSubConfig holds configuration for the Pub/Sub publisher.
type PubSubConfig struct {
	ProjectID string
	Topic     string

	// Timeout bounds a single publish attempt.
	// Default: 5 seconds
	Timeout time.Duration

	Registry *resilience.Registry
	Logger   zerolog.Logger
}

type sendFunc func(ctx context.Context, msg *pubsub.Message) (string, error)

// PubSubPublisher publishes events to a Pub/Sub topic through a circuit
// breaker with retries.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	send      sendFunc
	exec      *resilience.Executor
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewPubSubPublisher connects to Pub/Sub and prepares the topic publisher.
func NewPubSubPublisher(ctx context.Context, cfg PubSubConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	publisher := client.Publisher(cfg.Topic)
	publisher.EnableMessageOrdering = true

	p := newPubSubPublisher(cfg, func(ctx context.Context, msg *pubsub.Message) (string, error) {
		return publisher.Publish(ctx, msg).Get(ctx)
	})
	p.client = client
	p.publisher = publisher
	return p, nil
}

func newPubSubPublisher(cfg PubSubConfig, send sendFunc) *PubSubPublisher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	execCfg := resilience.DefaultConfig("pubsub:" + cfg.Topic)
	execCfg.Registry = cfg.Registry

	return &PubSubPublisher{
		send:    send,
		exec:    resilience.NewExecutor(execCfg),
		timeout: timeout,
		logger:  cfg.Logger.With().Str("component", "events").Str("topic", cfg.Topic).Logger(),
	}
}

// Publish sends the event. Events of the same line share an ordering key so
// subscribers see them in order.
func (p *PubSubPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := toMessage(ev)
	if err != nil {
		return err
	}

	err = p.exec.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		serverID, err := p.send(attemptCtx, msg)
		if err != nil {
			return err
		}
		p.logger.Debug().
			Str("event_id", ev.ID).
			Str("message_id", serverID).
			Msg("event published")
		return nil
	})
	if err != nil {
		if p.publisher != nil {
			// Ordered publishing pauses the key after a failure.
			p.publisher.ResumePublish(msg.OrderingKey)
		}
		return fmt.Errorf("publishing %s: %w", ev.Type, err)
	}
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func toMessage(ev Event) (*pubsub.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}
	return &pubsub.Message{
		Data:        data,
		OrderingKey: ev.LineID,
		Attributes: map[string]string{
			AttrEventType: ev.Type,
			AttrLineID:    ev.LineID,
		},
	}, nil
}

var _ Publisher = (*PubSubPublisher)(nil)
