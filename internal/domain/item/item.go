package item

import (
	"time"

	"foundly-match-service/internal/domain/geo"
	"foundly-match-service/internal/domain/shared"

	"github.com/google/uuid"
)

// Status marks a report as either a lost item or a found item
type Status string

const (
	StatusLost  Status = "lost"
	StatusFound Status = "found"
)

// IsValid returns true if the status is one of the known values
func (s Status) IsValid() bool {
	return s == StatusLost || s == StatusFound
}

// Opposite returns the counterpart status (lost pairs with found and vice versa)
func (s Status) Opposite() Status {
	if s == StatusLost {
		return StatusFound
	}
	return StatusLost
}

// Location is an optional item position. Lat and Lng are pointers because a
// report may carry an address only, or nothing at all; a record with just one
// of the two coordinates counts as having no usable location.
type Location struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Item represents a lost or found report created by a user
type Item struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        Status     `json:"status"`
	Category      string     `json:"category"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	ContactInfo   string     `json:"contact_info,omitempty"`
	PhotoURL      string     `json:"photo_url,omitempty"`
	Location      *Location  `json:"location,omitempty"`
	MatchedItemID *uuid.UUID `json:"matched_item_id,omitempty"`
	Resolved      bool       `json:"resolved"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate checks the fields the matching pipeline depends on
func (i *Item) Validate() error {
	if i.Title == "" {
		return shared.ErrTitleRequired
	}
	if !i.Status.IsValid() {
		return shared.ErrInvalidStatus
	}
	if i.Category == "" {
		return shared.ErrCategoryRequired
	}
	return nil
}

// HasLocation returns true if the item carries both coordinates
func (i *Item) HasLocation() bool {
	return i.Location != nil && i.Location.Lat != nil && i.Location.Lng != nil
}

// Coord returns the item position, and false when the item has no usable location
func (i *Item) Coord() (geo.Coord, bool) {
	if !i.HasLocation() {
		return geo.Coord{}, false
	}
	return geo.Coord{Lat: *i.Location.Lat, Lng: *i.Location.Lng}, true
}

// IsMatched returns true if the item is already cross-referenced to a counterpart
func (i *Item) IsMatched() bool {
	return i.MatchedItemID != nil && *i.MatchedItemID != uuid.Nil
}

// SetMatched records the cross-reference to the counterpart item
func (i *Item) SetMatched(counterpartID uuid.UUID) {
	id := counterpartID
	i.MatchedItemID = &id
	i.UpdatedAt = time.Now()
}

// Resolve marks the report as closed by its owner. Resolution is orthogonal
// to matching; a matched item stays matched.
func (i *Item) Resolve() {
	i.Resolved = true
	i.UpdatedAt = time.Now()
}

// OwnedBy returns true if the report was created by the given user
func (i *Item) OwnedBy(userID uuid.UUID) bool {
	return i.OwnerID == userID
}
