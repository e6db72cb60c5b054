package shared

import "errors"

// Domain-specific errors
var (
	// Item errors
	ErrItemNotFound       = errors.New("item not found")
	ErrTitleRequired      = errors.New("item title is required")
	ErrCategoryRequired   = errors.New("item category is required")
	ErrInvalidStatus      = errors.New("item status must be lost or found")
	ErrIncompleteLocation = errors.New("location requires both latitude and longitude")
	ErrNotItemOwner       = errors.New("item belongs to another user")

	// Match errors
	ErrItemAlreadyMatched = errors.New("item is already matched")
	ErrMatchConflict      = errors.New("match link conflict: counterpart already matched or deleted")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Validation errors
	ErrInvalidRequest = errors.New("invalid request")

	// Database errors
	ErrDatabaseConnection  = errors.New("database connection failed")
	ErrDatabaseQuery       = errors.New("database query failed")
	ErrDatabaseTransaction = errors.New("database transaction failed")

	// WebSocket errors
	ErrWebSocketConnection = errors.New("websocket connection failed")
	ErrWebSocketMessage    = errors.New("websocket message error")

	// WebSocket message validation errors
	ErrMessageTypeRequired   = errors.New("message type is required")
	ErrItemIDRequired        = errors.New("item_id is required")
	ErrItemTitleRequired     = errors.New("title is required")
	ErrItemStatusRequired    = errors.New("status is required")
	ErrItemCategoryRequired  = errors.New("category is required")
	ErrCoordinatesRequired   = errors.New("lat and lng are required")
	ErrNotificationIDInvalid = errors.New("invalid notification_id format")
	ErrUnknownMessageType    = errors.New("unknown message type")

	// Broadcasting errors
	ErrBroadcastFailed   = errors.New("broadcast failed")
	ErrUserNotSubscribed = errors.New("user not subscribed to notifications")

	// WebSocket handler specific errors
	ErrClientEventChannelNotFound = errors.New("client event channel not found")
	ErrInvalidItemIDFormat        = errors.New("invalid item_id format")
)
