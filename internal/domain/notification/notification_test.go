package notification

import (
	"testing"

	"foundly-match-service/internal/domain/item"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatchFound(t *testing.T) {
	subject := &item.Item{
		ID:      uuid.New(),
		Title:   "black wallet",
		Status:  item.StatusLost,
		OwnerID: uuid.New(),
	}
	counterpart := &item.Item{
		ID:          uuid.New(),
		Title:       "wallet found at station",
		Status:      item.StatusFound,
		OwnerID:     uuid.New(),
		ContactInfo: "finder@example.com",
	}

	n := NewMatchFound(subject, counterpart)

	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.Equal(t, subject.OwnerID, n.UserID)
	assert.Equal(t, counterpart.OwnerID, n.FromUserID)
	assert.Equal(t, KindMatchFound, n.Kind)
	assert.Equal(t, subject.ID, n.ItemID)
	require.NotNil(t, n.MatchedItemID)
	assert.Equal(t, counterpart.ID, *n.MatchedItemID)
	assert.Contains(t, n.Message, subject.Title)
	assert.Contains(t, n.Message, counterpart.Title)
	assert.Contains(t, n.Message, counterpart.ContactInfo)
	assert.False(t, n.Read)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestNewMatchFoundWithoutContactInfo(t *testing.T) {
	subject := &item.Item{ID: uuid.New(), Title: "keys", Status: item.StatusFound, OwnerID: uuid.New()}
	counterpart := &item.Item{ID: uuid.New(), Title: "my keys", Status: item.StatusLost, OwnerID: uuid.New()}

	n := NewMatchFound(subject, counterpart)

	assert.NotContains(t, n.Message, "Contact:")
}

func TestNewProximityAlert(t *testing.T) {
	recipient := uuid.New()
	newItem := &item.Item{
		ID:      uuid.New(),
		Title:   "blue umbrella",
		Status:  item.StatusFound,
		OwnerID: uuid.New(),
	}

	n := NewProximityAlert(recipient, newItem)

	assert.Equal(t, recipient, n.UserID)
	assert.Equal(t, newItem.OwnerID, n.FromUserID)
	assert.Equal(t, KindProximityAlert, n.Kind)
	assert.Equal(t, newItem.ID, n.ItemID)
	assert.Nil(t, n.MatchedItemID)
	assert.Contains(t, n.Message, newItem.Title)
}

func TestMarkRead(t *testing.T) {
	n := &Notification{}
	n.MarkRead()
	assert.True(t, n.Read)
}
