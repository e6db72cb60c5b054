package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/shared"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server message types
	MessageTypeCreateItem        MessageType = "create_item"
	MessageTypeGetItem           MessageType = "get_item"
	MessageTypeListItems         MessageType = "list_items"
	MessageTypeNearbyItems       MessageType = "nearby_items"
	MessageTypeUpdateItem        MessageType = "update_item"
	MessageTypeResolveItem       MessageType = "resolve_item"
	MessageTypeDeleteItem        MessageType = "delete_item"
	MessageTypeListNotifications MessageType = "list_notifications"
	MessageTypeMarkRead          MessageType = "mark_read"
	MessageTypeSubscribe         MessageType = "subscribe"
	MessageTypeUnsubscribe       MessageType = "unsubscribe"
	MessageTypePing              MessageType = "ping"

	// Server to Client message types
	MessageTypeItemCreated      MessageType = "item_created"
	MessageTypeItemUpdate       MessageType = "item_update"
	MessageTypeMatchFound       MessageType = "match_found"
	MessageTypeProximityAlert   MessageType = "proximity_alert"
	MessageTypeNotificationList MessageType = "notification_list"
	MessageTypeError            MessageType = "error"
	MessageTypePong             MessageType = "pong"
)

type ClientMessage struct {
	Type      MessageType            `json:"type"`
	ItemID    *uuid.UUID             `json:"item_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// ServerMessage represents a message sent from server to client
type ServerMessage struct {
	Type      MessageType            `json:"type"`
	ItemID    *uuid.UUID             `json:"item_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     *string                `json:"error,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

func NewServerMessage(msgType MessageType) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Data:      make(map[string]interface{}),
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(err string, itemID *uuid.UUID) *ServerMessage {
	return &ServerMessage{
		Type:      MessageTypeError,
		ItemID:    itemID,
		Error:     &err,
		Timestamp: time.Now().Unix(),
	}
}

func (m *ClientMessage) validateItemID() error {
	if m.ItemID == nil || *m.ItemID == uuid.Nil {
		return shared.ErrItemIDRequired
	}
	return nil
}

// ParseClientMessage parses a JSON message from client
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse client message: %w", err)
	}

	// Validate required fields
	if msg.Type == "" {
		return nil, shared.ErrMessageTypeRequired
	}

	return &msg, nil
}

// Validate validates a client message
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case MessageTypeCreateItem:
		if title, ok := m.Data["title"].(string); !ok || title == "" {
			return shared.ErrItemTitleRequired
		}
		status, ok := m.Data["status"].(string)
		if !ok || status == "" {
			return shared.ErrItemStatusRequired
		}
		if !item.Status(status).IsValid() {
			return shared.ErrInvalidStatus
		}
		if category, ok := m.Data["category"].(string); !ok || category == "" {
			return shared.ErrItemCategoryRequired
		}
		// A location is optional, but a lone coordinate is not usable
		_, hasLat := m.Data["lat"].(float64)
		_, hasLng := m.Data["lng"].(float64)
		if hasLat != hasLng {
			return shared.ErrIncompleteLocation
		}
	case MessageTypeGetItem, MessageTypeResolveItem, MessageTypeDeleteItem:
		if err := m.validateItemID(); err != nil {
			return err
		}
	case MessageTypeUpdateItem:
		if err := m.validateItemID(); err != nil {
			return err
		}
		if title, ok := m.Data["title"].(string); !ok || title == "" {
			return shared.ErrItemTitleRequired
		}
		if category, ok := m.Data["category"].(string); !ok || category == "" {
			return shared.ErrItemCategoryRequired
		}
	case MessageTypeNearbyItems:
		_, hasLat := m.Data["lat"].(float64)
		_, hasLng := m.Data["lng"].(float64)
		if !hasLat || !hasLng {
			return shared.ErrCoordinatesRequired
		}
	case MessageTypeMarkRead:
		idStr, ok := m.Data["notification_id"].(string)
		if !ok {
			return shared.ErrNotificationIDInvalid
		}
		if _, err := uuid.Parse(idStr); err != nil {
			return shared.ErrNotificationIDInvalid
		}
	case MessageTypeListItems, MessageTypeListNotifications:

	case MessageTypeSubscribe, MessageTypeUnsubscribe:

	case MessageTypePing:

	default:
		return shared.ErrUnknownMessageType
	}

	return nil
}
