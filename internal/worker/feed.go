package worker

import (
	"sort"
	"sync"
	"time"

	"github.com/subwayline/subwayline/internal/events"
)

// LineActivity summarizes the events seen for one line.
type LineActivity struct {
	LineID        string    `json:"lineId"`
	LastEventType string    `json:"lastEventType"`
	LastEventAt   time.Time `json:"lastEventAt"`
	Events        int       `json:"events"`
	Deleted       bool      `json:"deleted"`
}

// Feed keeps the most recent events in a fixed-size ring. Redelivered
// events are recognized by ID while they are still in the ring.
type Feed struct {
	mu    sync.RWMutex
	ring  []events.Event
	next  int
	size  int
	seen  map[string]struct{}
	lines map[string]*LineActivity
}

// NewFeed creates a feed holding up to capacity events.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultConfig().FeedCapacity
	}
	return &Feed{
		ring:  make([]events.Event, capacity),
		seen:  make(map[string]struct{}, capacity),
		lines: make(map[string]*LineActivity),
	}
}

// Add appends ev, evicting the oldest event when full. It returns false if
// the event is already in the feed.
func (f *Feed) Add(ev events.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.seen[ev.ID]; dup {
		return false
	}

	if f.size == len(f.ring) {
		delete(f.seen, f.ring[f.next].ID)
	} else {
		f.size++
	}
	f.ring[f.next] = ev
	f.next = (f.next + 1) % len(f.ring)
	f.seen[ev.ID] = struct{}{}

	activity, ok := f.lines[ev.LineID]
	if !ok {
		activity = &LineActivity{LineID: ev.LineID}
		f.lines[ev.LineID] = activity
	}
	activity.Events++
	if !ev.OccurredAt.Before(activity.LastEventAt) {
		activity.LastEventType = ev.Type
		activity.LastEventAt = ev.OccurredAt
	}
	if ev.Type == events.TypeLineDeleted {
		activity.Deleted = true
	}
	return true
}

// Recent returns up to limit events, newest first. A non-empty lineID keeps
// only that line's events. limit <= 0 means no limit.
func (f *Feed) Recent(limit int, lineID string) []events.Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]events.Event, 0, f.size)
	for i := 1; i <= f.size; i++ {
		ev := f.ring[(f.next-i+len(f.ring))%len(f.ring)]
		if lineID != "" && ev.LineID != lineID {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Lines returns the activity of every line seen, most recently active first.
func (f *Feed) Lines() []LineActivity {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]LineActivity, 0, len(f.lines))
	for _, a := range f.lines {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastEventAt.Equal(out[j].LastEventAt) {
			return out[i].LineID < out[j].LineID
		}
		return out[i].LastEventAt.After(out[j].LastEventAt)
	})
	return out
}

// Len returns the number of events held.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.size
}
