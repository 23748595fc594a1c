package event

import (
	"encoding/json"
	"fmt"

	"github.com/auricmart/agent-api/internal/model"
)

type EventType string

const (
	RequestCreated  EventType = "request.created"
	RequestAccepted EventType = "request.accepted"
	RequestDeclined EventType = "request.declined"
)

// Topic is the broker channel all request lifecycle events are published
// on. The notifier subscribes here.
const Topic = "requests"

// ActorSnapshot carries denormalized identity fields captured at emission
// time. Notification payloads embed these copies rather than live
// references, so later profile edits do not rewrite history.
type ActorSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ItemSnapshot mirrors the inventory item at emission time.
type ItemSnapshot struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	BuyPremium  float64 `json:"buyPremium"`
	SellPremium float64 `json:"sellPremium"`
}

// RequestEvent is the single domain event the coordinator emits per
// successful transition.
type RequestEvent struct {
	Type       EventType     `json:"type"`
	Request    model.Request `json:"request"`
	Customer   ActorSnapshot `json:"customer"`
	Seller     ActorSnapshot `json:"seller"`
	Item       ItemSnapshot  `json:"item"`
	OccurredAt model.Millis  `json:"occurredAt"`
}

// Encode serializes the event for the broker.
func (e *RequestEvent) Encode() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}
	return payload, nil
}

// Decode parses a broker payload back into a RequestEvent.
func Decode(payload []byte) (*RequestEvent, error) {
	var e RequestEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("failed to decode request event: %w", err)
	}
	return &e, nil
}
