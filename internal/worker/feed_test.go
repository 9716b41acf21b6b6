package worker_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwayline/subwayline/internal/events"
	"github.com/subwayline/subwayline/internal/worker"
)

var baseTime = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func event(id, eventType, lineID string, offset time.Duration) events.Event {
	return events.Event{ID: id, Type: eventType, LineID: lineID, OccurredAt: baseTime.Add(offset)}
}

func ids(evs []events.Event) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.ID)
	}
	return out
}

func TestFeed_RecentNewestFirst(t *testing.T) {
	feed := worker.NewFeed(10)
	feed.Add(event("evt_1", events.TypeLineCreated, "line_a", 0))
	feed.Add(event("evt_2", events.TypeSectionAdded, "line_a", time.Minute))
	feed.Add(event("evt_3", events.TypeLineCreated, "line_b", 2*time.Minute))

	assert.Equal(t, []string{"evt_3", "evt_2", "evt_1"}, ids(feed.Recent(0, "")))
	assert.Equal(t, []string{"evt_3", "evt_2"}, ids(feed.Recent(2, "")))
	assert.Equal(t, []string{"evt_2", "evt_1"}, ids(feed.Recent(0, "line_a")))
	assert.Equal(t, 3, feed.Len())
}

func TestFeed_EvictsOldest(t *testing.T) {
	feed := worker.NewFeed(3)
	for i := 1; i <= 5; i++ {
		require.True(t, feed.Add(event(fmt.Sprintf("evt_%d", i), events.TypeSectionAdded, "line_a", time.Duration(i)*time.Second)))
	}

	assert.Equal(t, 3, feed.Len())
	assert.Equal(t, []string{"evt_5", "evt_4", "evt_3"}, ids(feed.Recent(0, "")))

	// An evicted ID is no longer remembered.
	assert.True(t, feed.Add(event("evt_1", events.TypeSectionAdded, "line_a", 6*time.Second)))
	assert.Equal(t, []string{"evt_1", "evt_5", "evt_4"}, ids(feed.Recent(0, "")))
}

func TestFeed_IgnoresRedelivery(t *testing.T) {
	feed := worker.NewFeed(5)
	ev := event("evt_1", events.TypeLineCreated, "line_a", 0)

	assert.True(t, feed.Add(ev))
	assert.False(t, feed.Add(ev))
	assert.Equal(t, 1, feed.Len())
	assert.Equal(t, 1, feed.Lines()[0].Events)
}

func TestFeed_Lines(t *testing.T) {
	feed := worker.NewFeed(10)
	feed.Add(event("evt_1", events.TypeLineCreated, "line_a", 0))
	feed.Add(event("evt_2", events.TypeLineCreated, "line_b", time.Minute))
	feed.Add(event("evt_3", events.TypeSectionAdded, "line_a", 3*time.Minute))
	// Out of order delivery does not roll back the last event.
	feed.Add(event("evt_4", events.TypeLineUpdated, "line_a", 2*time.Minute))
	feed.Add(event("evt_5", events.TypeLineDeleted, "line_b", 4*time.Minute))

	lines := feed.Lines()
	require.Len(t, lines, 2)

	assert.Equal(t, "line_b", lines[0].LineID)
	assert.True(t, lines[0].Deleted)
	assert.Equal(t, 2, lines[0].Events)

	assert.Equal(t, "line_a", lines[1].LineID)
	assert.Equal(t, events.TypeSectionAdded, lines[1].LastEventType)
	assert.Equal(t, baseTime.Add(3*time.Minute), lines[1].LastEventAt)
	assert.Equal(t, 3, lines[1].Events)
	assert.False(t, lines[1].Deleted)
}

func TestNewFeed_DefaultCapacity(t *testing.T) {
	feed := worker.NewFeed(0)
	for i := 0; i < worker.DefaultConfig().FeedCapacity+1; i++ {
		feed.Add(event(fmt.Sprintf("evt_%d", i), events.TypeSectionAdded, "line_a", 0))
	}
	assert.Equal(t, worker.DefaultConfig().FeedCapacity, feed.Len())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PUBSUB_PROJECT_ID", "subway-prod")
	t.Setenv("PUBSUB_SUBSCRIPTION", "")
	t.Setenv("FEED_CAPACITY", "25")
	t.Setenv("PUBSUB_MAX_OUTSTANDING", "nope")

	cfg := worker.ConfigFromEnv()

	assert.Equal(t, "subway-prod", cfg.ProjectID)
	assert.Equal(t, "line-events-worker", cfg.Subscription)
	assert.Equal(t, 25, cfg.FeedCapacity)
	assert.Equal(t, 10, cfg.MaxOutstanding)
	assert.Equal(t, 10*time.Minute, cfg.MaxExtension)
}
