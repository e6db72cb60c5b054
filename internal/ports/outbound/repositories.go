package outbound

import (
	"context"
	"time"

	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/notification"
	"foundly-match-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ItemRepository defines the interface for item data operations
type ItemRepository interface {
	// Create persists a new item, assigning its ID
	Create(ctx context.Context, item *item.Item) error

	// GetByID retrieves an item by ID
	GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error)

	// GetAll retrieves the full item snapshot in creation order
	GetAll(ctx context.Context) ([]*item.Item, error)

	// GetByOwnerID retrieves all items created by a user
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*item.Item, error)

	// Update updates an item's editable fields
	Update(ctx context.Context, item *item.Item) error

	// SetResolved marks an item as closed by its owner
	SetResolved(ctx context.Context, id uuid.UUID, resolved bool) error

	// Delete deletes an item
	Delete(ctx context.Context, id uuid.UUID) error

	// LinkItems sets the matched_item_id cross-reference on both items as a
	// single atomic conditional update. Each side is guarded on being
	// currently unmatched; if either guard fails the whole link is rolled
	// back and shared.ErrMatchConflict is returned.
	LinkItems(ctx context.Context, itemID, counterpartID uuid.UUID) error
}

// NotificationRepository defines the interface for the persisted notification feed
type NotificationRepository interface {
	// Create persists a new notification
	Create(ctx context.Context, notification *notification.Notification) error

	// GetByUserID retrieves a user's notifications, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error)

	// MarkRead flags a notification as seen
	MarkRead(ctx context.Context, id uuid.UUID) error

	// Delete removes a single notification
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteOlderThan removes notifications created before the cutoff,
	// returning the number removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*shared.User, error)

	// Create creates a new user
	Create(ctx context.Context, user *shared.User) error
}
