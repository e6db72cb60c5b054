package outbound

import (
	"context"

	"github.com/google/uuid"
)

// EventType represents the type of event being broadcasted
type EventType string

const (
	EventTypeItemCreated    EventType = "item.created"
	EventTypeMatchFound     EventType = "notification.match_found"
	EventTypeProximityAlert EventType = "notification.proximity_alert"
	EventTypeError          EventType = "error"
)

// Event represents a broadcast event addressed to one user's feed
type Event struct {
	Type      EventType              `json:"type"`
	UserID    uuid.UUID              `json:"user_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Broadcaster defines the interface for fanning events out to connected
// clients. Delivery is fire-and-forget from the engine's perspective; the
// persisted notification feed is the durable record.
type Broadcaster interface {
	// Subscribe subscribes a client to events addressed to a user.
	// A client subscribed to several users receives all events on the same channel.
	Subscribe(ctx context.Context, userID uuid.UUID, clientID string, eventChan chan Event) error

	// Unsubscribe unsubscribes a client from a user's events
	Unsubscribe(ctx context.Context, userID uuid.UUID, clientID string) error

	// Publish publishes an event to all clients subscribed to the user
	Publish(ctx context.Context, userID uuid.UUID, event Event) error

	// GetSubscribers returns the client IDs currently subscribed
	GetSubscribers(ctx context.Context, userID uuid.UUID) ([]string, error)

	// IsSubscribed checks if a client is subscribed to a user's events
	IsSubscribed(ctx context.Context, userID uuid.UUID, clientID string) bool
}
