package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwayline/subwayline/internal/resilience"
)

func TestPubSubPublisher_Publish(t *testing.T) {
	var sent []*pubsub.Message
	pub := newPubSubPublisher(PubSubConfig{Topic: "line-events", Logger: zerolog.New(io.Discard)},
		func(_ context.Context, msg *pubsub.Message) (string, error) {
			sent = append(sent, msg)
			return "srv-1", nil
		})

	ev, err := New(TypeLineUpdated, "line_9", LinePayload{Name: "Blue", Color: "blue"})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), ev))

	require.Len(t, sent, 1)
	assert.Equal(t, "line_9", sent[0].OrderingKey)
	assert.Equal(t, TypeLineUpdated, sent[0].Attributes[AttrEventType])
	assert.Equal(t, "line_9", sent[0].Attributes[AttrLineID])

	var decoded Event
	require.NoError(t, json.Unmarshal(sent[0].Data, &decoded))
	assert.Equal(t, ev.ID, decoded.ID)
	assert.JSONEq(t, string(ev.Payload), string(decoded.Payload))
}

func TestPubSubPublisher_RetriesAndReportsFailure(t *testing.T) {
	registry := resilience.NewRegistry()
	attempts := 0
	pub := newPubSubPublisher(PubSubConfig{
		Topic:    "line-events",
		Timeout:  time.Second,
		Registry: registry,
		Logger:   zerolog.New(io.Discard),
	}, func(context.Context, *pubsub.Message) (string, error) {
		attempts++
		return "", errors.New("unavailable")
	})

	ev, err := New(TypeLineDeleted, "line_9", nil)
	require.NoError(t, err)

	err = pub.Publish(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), TypeLineDeleted)
	assert.Equal(t, 4, attempts)

	health := registry.All()
	require.Len(t, health, 1)
	assert.Equal(t, "pubsub:line-events", health[0].Name)
	assert.Equal(t, "unavailable", health[0].LastError)
}

func TestPubSubPublisher_CloseWithoutClient(t *testing.T) {
	pub := newPubSubPublisher(PubSubConfig{Topic: "t", Logger: zerolog.New(io.Discard)},
		func(context.Context, *pubsub.Message) (string, error) { return "", nil })
	assert.NoError(t, pub.Close())
}
