package app

import (
	"context"
	"testing"
	"time"

	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/notification"
	"foundly-match-service/internal/domain/shared"
	"foundly-match-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

type fakeItemRepo struct {
	items     []*item.Item
	getAllErr error
	linkErr   error
	linked    [][2]uuid.UUID
}

func (r *fakeItemRepo) Create(ctx context.Context, it *item.Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	r.items = append(r.items, it)
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, shared.ErrItemNotFound
}

func (r *fakeItemRepo) GetAll(ctx context.Context) ([]*item.Item, error) {
	if r.getAllErr != nil {
		return nil, r.getAllErr
	}
	return r.items, nil
}

func (r *fakeItemRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*item.Item, error) {
	var owned []*item.Item
	for _, it := range r.items {
		if it.OwnerID == ownerID {
			owned = append(owned, it)
		}
	}
	return owned, nil
}

func (r *fakeItemRepo) Update(ctx context.Context, it *item.Item) error { return nil }

func (r *fakeItemRepo) SetResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	it, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	it.Resolved = resolved
	return nil
}

func (r *fakeItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return shared.ErrItemNotFound
}

func (r *fakeItemRepo) LinkItems(ctx context.Context, itemID, counterpartID uuid.UUID) error {
	if r.linkErr != nil {
		return r.linkErr
	}
	r.linked = append(r.linked, [2]uuid.UUID{itemID, counterpartID})
	return nil
}

type fakeNotificationRepo struct {
	created   []*notification.Notification
	createErr error
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	var result []*notification.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	for _, n := range r.created {
		if n.ID == id {
			n.MarkRead()
			return nil
		}
	}
	return shared.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeNotificationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeBroadcaster struct {
	published []outbound.Event
}

func (b *fakeBroadcaster) Subscribe(ctx context.Context, userID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	return nil
}

func (b *fakeBroadcaster) Unsubscribe(ctx context.Context, userID uuid.UUID, clientID string) error {
	return nil
}

func (b *fakeBroadcaster) Publish(ctx context.Context, userID uuid.UUID, event outbound.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *fakeBroadcaster) GetSubscribers(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return nil, nil
}

func (b *fakeBroadcaster) IsSubscribed(ctx context.Context, userID uuid.UUID, clientID string) bool {
	return false
}

func reportAt(status item.Status, title, category string, lat, lng float64) *item.Item {
	return &item.Item{
		ID:       uuid.New(),
		Title:    title,
		Status:   status,
		Category: category,
		OwnerID:  uuid.New(),
		Location: &item.Location{Lat: fptr(lat), Lng: fptr(lng)},
	}
}

func newTestMatchService(itemRepo *fakeItemRepo, notifRepo *fakeNotificationRepo, bc *fakeBroadcaster) *MatchService {
	return NewMatchService(MatchServiceParams{
		ItemRepo:          itemRepo,
		NotificationRepo:  notifRepo,
		Broadcaster:       bc,
		MatchRadiusKm:     1.0,
		ProximityRadiusKm: 5.0,
		Retention:         720 * time.Hour,
		Logger:            zerolog.Nop(),
	})
}

func TestOnItemCreatedLinksCounterpartAndNotifiesBothOwners(t *testing.T) {
	found := reportAt(item.StatusFound, "black wallet found", "accessories", 1.001, 1.001)
	lost := reportAt(item.StatusLost, "lost my black wallet", "accessories", 1.000, 1.000)

	itemRepo := &fakeItemRepo{items: []*item.Item{found, lost}}
	notifRepo := &fakeNotificationRepo{}
	bc := &fakeBroadcaster{}
	service := newTestMatchService(itemRepo, notifRepo, bc)

	outcome, err := service.OnItemCreated(context.Background(), lost)

	require.NoError(t, err)
	require.NotNil(t, outcome.MatchedItemID)
	assert.Equal(t, found.ID, *outcome.MatchedItemID)
	assert.True(t, outcome.Matched())

	require.Len(t, itemRepo.linked, 1)
	assert.Equal(t, [2]uuid.UUID{lost.ID, found.ID}, itemRepo.linked[0])
	assert.True(t, lost.IsMatched())
	assert.True(t, found.IsMatched())

	// One match notification per owner
	var matchNotifs []*notification.Notification
	for _, n := range notifRepo.created {
		if n.Kind == notification.KindMatchFound {
			matchNotifs = append(matchNotifs, n)
		}
	}
	require.Len(t, matchNotifs, 2)
	recipients := map[uuid.UUID]bool{matchNotifs[0].UserID: true, matchNotifs[1].UserID: true}
	assert.True(t, recipients[lost.OwnerID])
	assert.True(t, recipients[found.OwnerID])

	// Every persisted notification also reaches the live feed
	assert.Len(t, bc.published, len(notifRepo.created))
}

func TestOnItemCreatedNoCounterpartLeavesItemUnmatched(t *testing.T) {
	existing := reportAt(item.StatusFound, "green umbrella", "misc", 40.0, -74.0)
	lost := reportAt(item.StatusLost, "black wallet", "accessories", 1.000, 1.000)

	itemRepo := &fakeItemRepo{items: []*item.Item{existing, lost}}
	notifRepo := &fakeNotificationRepo{}
	service := newTestMatchService(itemRepo, notifRepo, &fakeBroadcaster{})

	outcome, err := service.OnItemCreated(context.Background(), lost)

	require.NoError(t, err)
	assert.False(t, outcome.Matched())
	assert.Empty(t, itemRepo.linked)
	assert.False(t, lost.IsMatched())
}

func TestOnItemCreatedConflictLoserStaysUnmatched(t *testing.T) {
	found := reportAt(item.StatusFound, "black wallet found", "accessories", 1.001, 1.001)
	lost := reportAt(item.StatusLost, "lost black wallet", "accessories", 1.000, 1.000)

	itemRepo := &fakeItemRepo{items: []*item.Item{found, lost}, linkErr: shared.ErrMatchConflict}
	notifRepo := &fakeNotificationRepo{}
	service := newTestMatchService(itemRepo, notifRepo, &fakeBroadcaster{})

	outcome, err := service.OnItemCreated(context.Background(), lost)

	require.NoError(t, err)
	assert.False(t, outcome.Matched())
	assert.False(t, lost.IsMatched())
	assert.False(t, found.IsMatched())

	for _, n := range notifRepo.created {
		assert.NotEqual(t, notification.KindMatchFound, n.Kind)
	}
}

func TestOnItemCreatedSkipsAlreadyMatchedCounterpart(t *testing.T) {
	found := reportAt(item.StatusFound, "black wallet found", "accessories", 1.001, 1.001)
	found.SetMatched(uuid.New())
	lost := reportAt(item.StatusLost, "lost black wallet", "accessories", 1.000, 1.000)

	itemRepo := &fakeItemRepo{items: []*item.Item{found, lost}}
	service := newTestMatchService(itemRepo, &fakeNotificationRepo{}, &fakeBroadcaster{})

	outcome, err := service.OnItemCreated(context.Background(), lost)

	require.NoError(t, err)
	assert.False(t, outcome.Matched())
	assert.Empty(t, itemRepo.linked)
}

func TestOnItemCreatedEmitsProximityAlerts(t *testing.T) {
	neighborA := reportAt(item.StatusFound, "umbrella", "misc", 1.001, 1.001)
	neighborB := reportAt(item.StatusLost, "scarf", "clothing", 1.002, 1.002)
	farAway := reportAt(item.StatusFound, "gloves", "clothing", 40.0, -74.0)
	lost := reportAt(item.StatusLost, "black wallet", "accessories", 1.000, 1.000)

	itemRepo := &fakeItemRepo{items: []*item.Item{neighborA, neighborB, farAway, lost}}
	notifRepo := &fakeNotificationRepo{}
	service := newTestMatchService(itemRepo, notifRepo, &fakeBroadcaster{})

	outcome, err := service.OnItemCreated(context.Background(), lost)

	require.NoError(t, err)
	assert.Equal(t, 2, outcome.ProximityAlerts)

	recipients := map[uuid.UUID]bool{}
	for _, n := range notifRepo.created {
		if n.Kind == notification.KindProximityAlert {
			recipients[n.UserID] = true
			assert.Equal(t, lost.ID, n.ItemID)
			assert.Equal(t, lost.OwnerID, n.FromUserID)
		}
	}
	assert.True(t, recipients[neighborA.OwnerID])
	assert.True(t, recipients[neighborB.OwnerID])
	assert.False(t, recipients[farAway.OwnerID])
}

func TestOnItemCreatedNoLocationNoAlerts(t *testing.T) {
	neighbor := reportAt(item.StatusFound, "umbrella", "misc", 1.001, 1.001)
	lost := &item.Item{
		ID:       uuid.New(),
		Title:    "black wallet",
		Status:   item.StatusLost,
		Category: "accessories",
		OwnerID:  uuid.New(),
	}

	itemRepo := &fakeItemRepo{items: []*item.Item{neighbor, lost}}
	service := newTestMatchService(itemRepo, &fakeNotificationRepo{}, &fakeBroadcaster{})

	outcome, err := service.OnItemCreated(context.Background(), lost)

	require.NoError(t, err)
	assert.Zero(t, outcome.ProximityAlerts)
}

func TestOnItemCreatedInvalidItemIsANoOp(t *testing.T) {
	invalid := &item.Item{ID: uuid.New(), Status: item.StatusLost, OwnerID: uuid.New()}

	itemRepo := &fakeItemRepo{}
	service := newTestMatchService(itemRepo, &fakeNotificationRepo{}, &fakeBroadcaster{})

	outcome, err := service.OnItemCreated(context.Background(), invalid)

	require.NoError(t, err)
	assert.False(t, outcome.Matched())
	assert.Zero(t, outcome.ProximityAlerts)
}

func TestOnItemCreatedSnapshotFailureSurfaces(t *testing.T) {
	lost := reportAt(item.StatusLost, "black wallet", "accessories", 1.000, 1.000)
	itemRepo := &fakeItemRepo{getAllErr: assert.AnError}
	service := newTestMatchService(itemRepo, &fakeNotificationRepo{}, &fakeBroadcaster{})

	outcome, err := service.OnItemCreated(context.Background(), lost)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, outcome)
}

func TestOnItemCreatedNotificationPersistFailureDoesNotFail(t *testing.T) {
	found := reportAt(item.StatusFound, "black wallet found", "accessories", 1.001, 1.001)
	lost := reportAt(item.StatusLost, "lost black wallet", "accessories", 1.000, 1.000)

	itemRepo := &fakeItemRepo{items: []*item.Item{found, lost}}
	notifRepo := &fakeNotificationRepo{createErr: assert.AnError}
	bc := &fakeBroadcaster{}
	service := newTestMatchService(itemRepo, notifRepo, bc)

	outcome, err := service.OnItemCreated(context.Background(), lost)

	require.NoError(t, err)
	assert.True(t, outcome.Matched())
	assert.Empty(t, bc.published)
}
