package inbound

import (
	"context"

	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/notification"
	"foundly-match-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ItemService defines the interface for item operations
type ItemService interface {
	// CreateItem persists a new report and runs the match/proximity flow
	CreateItem(ctx context.Context, req CreateItemRequest) (*item.Item, *shared.MatchOutcome, error)

	// GetItem retrieves an item by ID
	GetItem(ctx context.Context, itemID uuid.UUID) (*item.Item, error)

	// ListItems retrieves items with optional filters
	ListItems(ctx context.Context, req ListItemsRequest) ([]*item.Item, error)

	// ListNearby retrieves items within a radius of a device coordinate
	ListNearby(ctx context.Context, req NearbyRequest) ([]*item.Item, error)

	// UpdateItem updates an item's editable fields
	UpdateItem(ctx context.Context, req UpdateItemRequest) (*item.Item, error)

	// ResolveItem marks an item as closed by its owner
	ResolveItem(ctx context.Context, itemID, userID uuid.UUID) error

	// DeleteItem deletes an item on behalf of its owner
	DeleteItem(ctx context.Context, itemID, userID uuid.UUID) error
}

// NotificationService defines the interface for the notification feed
type NotificationService interface {
	// ListNotifications retrieves a user's notifications, newest first
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)

	// MarkRead flags a notification as seen
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
}

// MatchLinker coordinates the item-created event: find a counterpart, link
// the pair atomically, alert nearby owners.
type MatchLinker interface {
	OnItemCreated(ctx context.Context, newItem *item.Item) (*shared.MatchOutcome, error)
}

// request to create an item
type CreateItemRequest struct {
	OwnerID     uuid.UUID   `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      item.Status `json:"status"`
	Category    string      `json:"category"`
	ContactInfo string      `json:"contact_info,omitempty"`
	PhotoURL    string      `json:"photo_url,omitempty"`
	Address     string      `json:"address,omitempty"`
	Lat         *float64    `json:"lat,omitempty"`
	Lng         *float64    `json:"lng,omitempty"`
}

// request to list items
type ListItemsRequest struct {
	Status   *item.Status `json:"status,omitempty"`
	Category string       `json:"category,omitempty"`
	OwnerID  *uuid.UUID   `json:"owner_id,omitempty"`
}

// request to list items near a device position
type NearbyRequest struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km,omitempty"`
}

// request to update an item's editable fields. Status changes do not
// re-trigger matching.
type UpdateItemRequest struct {
	ItemID      uuid.UUID `json:"item_id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ContactInfo string    `json:"contact_info,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Address     string    `json:"address,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
}
