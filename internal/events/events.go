// Package events publishes line change notifications so other processes can
// follow the state of the network.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeLineCreated  = "line.created"
	TypeLineUpdated  = "line.updated"
	TypeLineDeleted  = "line.deleted"
	TypeSectionAdded = "line.section_added"
)

// Event is a line change notification.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	LineID     string          `json:"lineId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// New builds an event with a fresh ID. payload is marshaled to JSON; a nil
// payload is omitted.
func New(eventType, lineID string, payload any) (Event, error) {
	ev := Event{
		ID:         "evt_" + uuid.New().String()[:22],
		Type:       eventType,
		LineID:     lineID,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		ev.Payload = data
	}
	return ev, nil
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// SectionAddedPayload describes an accepted section insertion.
type SectionAddedPayload struct {
	UpStationID   string `json:"upStationId"`
	DownStationID string `json:"downStationId"`
	Distance      int    `json:"distance"`
	StationCount  int    `json:"stationCount"`
}

// LinePayload carries the line attributes for create and update events.
type LinePayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
