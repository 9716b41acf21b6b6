package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/subwayline/subwayline/internal/events"
)

var errMalformedEvent = errors.New("malformed line event")

// PubSubHandler receives line events from a Pub/Sub subscription and adds
// them to a Feed.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	feed             *Feed
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	MaxOutstanding   int
	MaxExtension     time.Duration
	Feed             *Feed
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = cfg.MaxOutstanding
	subscriber.ReceiveSettings.MaxExtension = cfg.MaxExtension

	h := newHandler(cfg.Feed, cfg.Logger)
	h.client = client
	h.subscriber = subscriber
	h.subscriptionName = cfg.SubscriptionName
	return h, nil
}

func newHandler(feed *Feed, logger zerolog.Logger) *PubSubHandler {
	return &PubSubHandler{
		feed:   feed,
		logger: logger.With().Str("component", "pubsub").Logger(),
	}
}

// Start receives messages until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
		if h.handle(msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// handle processes one message and reports whether it should be acked.
// Malformed messages are nacked so the subscription's dead-letter policy
// can take them.
func (h *PubSubHandler) handle(msg *pubsub.Message) bool {
	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	ev, err := decodeEvent(msg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		return false
	}

	switch ev.Type {
	case events.TypeLineCreated, events.TypeLineUpdated, events.TypeLineDeleted, events.TypeSectionAdded:
	default:
		// Newer publishers may emit types this worker does not know yet.
		logger.Warn().Str("event_type", ev.Type).Msg("unknown event type")
		return true
	}

	if !h.feed.Add(ev) {
		logger.Debug().Str("event_id", ev.ID).Msg("duplicate event")
		return true
	}

	logger.Info().
		Str("event_id", ev.ID).
		Str("event_type", ev.Type).
		Str("line_id", ev.LineID).
		Msg("line event received")
	return true
}

func decodeEvent(msg *pubsub.Message) (events.Event, error) {
	var ev events.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return events.Event{}, fmt.Errorf("%w: %w", errMalformedEvent, err)
	}
	if ev.ID == "" || ev.Type == "" || ev.LineID == "" {
		return events.Event{}, fmt.Errorf("%w: missing id, type or line id", errMalformedEvent)
	}
	if attr, ok := msg.Attributes[events.AttrEventType]; ok && attr != ev.Type {
		return events.Event{}, fmt.Errorf("%w: attribute %q does not match type %q", errMalformedEvent, attr, ev.Type)
	}
	return ev, nil
}
