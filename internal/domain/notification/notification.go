package notification

import (
	"fmt"
	"time"

	"foundly-match-service/internal/domain/item"

	"github.com/google/uuid"
)

// Kind represents the type of a notification
type Kind string

const (
	KindMatchFound     Kind = "match_found"
	KindProximityAlert Kind = "proximity_alert"
)

// Notification is a message addressed to a single user. The engine
// constructs it; delivery and read state belong to the notification feed.
type Notification struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	FromUserID    uuid.UUID  `json:"from_user_id"`
	Kind          Kind       `json:"kind"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	ItemID        uuid.UUID  `json:"item_id"`
	MatchedItemID *uuid.UUID `json:"matched_item_id,omitempty"`
	Read          bool       `json:"read"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewMatchFound builds the notification sent to the owner of subject when it
// was cross-referenced with counterpart.
func NewMatchFound(subject, counterpart *item.Item) *Notification {
	counterpartID := counterpart.ID

	message := fmt.Sprintf("Your %s item %q matches %q.", subject.Status, subject.Title, counterpart.Title)
	if counterpart.ContactInfo != "" {
		message = fmt.Sprintf("%s Contact: %s", message, counterpart.ContactInfo)
	}

	return &Notification{
		ID:            uuid.New(),
		UserID:        subject.OwnerID,
		FromUserID:    counterpart.OwnerID,
		Kind:          KindMatchFound,
		Title:         "Match found!",
		Message:       message,
		ItemID:        subject.ID,
		MatchedItemID: &counterpartID,
		CreatedAt:     time.Now(),
	}
}

// NewProximityAlert builds the notification sent to the owner of a nearby
// item when newItem is reported close to it.
func NewProximityAlert(recipient uuid.UUID, newItem *item.Item) *Notification {
	return &Notification{
		ID:         uuid.New(),
		UserID:     recipient,
		FromUserID: newItem.OwnerID,
		Kind:       KindProximityAlert,
		Title:      "Item reported nearby",
		Message:    fmt.Sprintf("A %s item %q was just reported near one of your items.", newItem.Status, newItem.Title),
		ItemID:     newItem.ID,
		CreatedAt:  time.Now(),
	}
}

// MarkRead flags the notification as seen by its recipient
func (n *Notification) MarkRead() {
	n.Read = true
}
