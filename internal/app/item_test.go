package app

import (
	"context"
	"testing"
	"time"

	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/shared"
	"foundly-match-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*shared.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, u *shared.User) error {
	r.users[u.ID] = u
	return nil
}

type fakeLinker struct {
	calls    int
	lastItem *item.Item
	outcome  *shared.MatchOutcome
	err      error
}

func (l *fakeLinker) OnItemCreated(ctx context.Context, newItem *item.Item) (*shared.MatchOutcome, error) {
	l.calls++
	l.lastItem = newItem
	if l.err != nil {
		return nil, l.err
	}
	if l.outcome != nil {
		return l.outcome, nil
	}
	return &shared.MatchOutcome{ItemID: newItem.ID}, nil
}

func newTestItemService(itemRepo *fakeItemRepo, userRepo *fakeUserRepo, linker *fakeLinker) *ItemService {
	return NewItemService(ItemServiceParams{
		ItemRepo: itemRepo,
		UserRepo: userRepo,
		Linker:   linker,
		Logger:   zerolog.Nop(),
	})
}

func knownUser() (*fakeUserRepo, uuid.UUID) {
	id := uuid.New()
	return &fakeUserRepo{users: map[uuid.UUID]*shared.User{
		id: {ID: id, Name: "Ana", Email: "ana@example.com", CreatedAt: time.Now()},
	}}, id
}

func TestCreateItemPersistsAndRunsLinker(t *testing.T) {
	itemRepo := &fakeItemRepo{}
	userRepo, ownerID := knownUser()
	linker := &fakeLinker{}
	service := newTestItemService(itemRepo, userRepo, linker)

	created, outcome, err := service.CreateItem(context.Background(), inbound.CreateItemRequest{
		OwnerID:  ownerID,
		Title:    "black wallet",
		Status:   item.StatusLost,
		Category: "accessories",
		Lat:      fptr(1.0),
		Lng:      fptr(1.0),
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, ownerID, created.OwnerID)
	require.NotNil(t, outcome)
	assert.Equal(t, created.ID, outcome.ItemID)

	assert.Equal(t, 1, linker.calls)
	assert.Equal(t, created, linker.lastItem)
	assert.Len(t, itemRepo.items, 1)
}

func TestCreateItemValidationFailure(t *testing.T) {
	itemRepo := &fakeItemRepo{}
	userRepo, ownerID := knownUser()
	linker := &fakeLinker{}
	service := newTestItemService(itemRepo, userRepo, linker)

	_, _, err := service.CreateItem(context.Background(), inbound.CreateItemRequest{
		OwnerID:  ownerID,
		Status:   item.StatusLost,
		Category: "accessories",
	})

	assert.ErrorIs(t, err, shared.ErrTitleRequired)
	assert.Empty(t, itemRepo.items)
	assert.Zero(t, linker.calls)
}

func TestCreateItemUnknownOwner(t *testing.T) {
	service := newTestItemService(&fakeItemRepo{}, &fakeUserRepo{users: map[uuid.UUID]*shared.User{}}, &fakeLinker{})

	_, _, err := service.CreateItem(context.Background(), inbound.CreateItemRequest{
		OwnerID:  uuid.New(),
		Title:    "black wallet",
		Status:   item.StatusLost,
		Category: "accessories",
	})

	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestCreateItemLinkerFailureStillSucceeds(t *testing.T) {
	itemRepo := &fakeItemRepo{}
	userRepo, ownerID := knownUser()
	linker := &fakeLinker{err: assert.AnError}
	service := newTestItemService(itemRepo, userRepo, linker)

	created, outcome, err := service.CreateItem(context.Background(), inbound.CreateItemRequest{
		OwnerID:  ownerID,
		Title:    "black wallet",
		Status:   item.StatusLost,
		Category: "accessories",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, outcome)
	assert.False(t, outcome.Matched())
	assert.Len(t, itemRepo.items, 1)
}

func TestListItemsFilters(t *testing.T) {
	owner := uuid.New()
	lostWallet := reportAt(item.StatusLost, "wallet", "accessories", 1, 1)
	lostWallet.OwnerID = owner
	foundKeys := reportAt(item.StatusFound, "keys", "keys", 1, 1)
	lostPhone := reportAt(item.StatusLost, "phone", "electronics", 1, 1)

	itemRepo := &fakeItemRepo{items: []*item.Item{lostWallet, foundKeys, lostPhone}}
	service := newTestItemService(itemRepo, &fakeUserRepo{}, &fakeLinker{})

	all, err := service.ListItems(context.Background(), inbound.ListItemsRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	lost := item.StatusLost
	byStatus, err := service.ListItems(context.Background(), inbound.ListItemsRequest{Status: &lost})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byCategory, err := service.ListItems(context.Background(), inbound.ListItemsRequest{Category: "keys"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, foundKeys.ID, byCategory[0].ID)

	byOwner, err := service.ListItems(context.Background(), inbound.ListItemsRequest{OwnerID: &owner})
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, lostWallet.ID, byOwner[0].ID)
}

func TestListNearbyUsesDefaultRadius(t *testing.T) {
	inside := reportAt(item.StatusLost, "wallet", "accessories", 1.001, 1.001)
	outside := reportAt(item.StatusFound, "keys", "keys", 2.0, 2.0)

	itemRepo := &fakeItemRepo{items: []*item.Item{inside, outside}}
	service := newTestItemService(itemRepo, &fakeUserRepo{}, &fakeLinker{})

	got, err := service.ListNearby(context.Background(), inbound.NearbyRequest{Lat: 1.0, Lng: 1.0})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inside.ID, got[0].ID)
}

func TestUpdateItemOwnerOnly(t *testing.T) {
	existing := reportAt(item.StatusLost, "wallet", "accessories", 1, 1)
	itemRepo := &fakeItemRepo{items: []*item.Item{existing}}
	service := newTestItemService(itemRepo, &fakeUserRepo{}, &fakeLinker{})

	_, err := service.UpdateItem(context.Background(), inbound.UpdateItemRequest{
		ItemID:   existing.ID,
		UserID:   uuid.New(),
		Title:    "brown wallet",
		Category: "accessories",
	})

	assert.ErrorIs(t, err, shared.ErrNotItemOwner)
}

func TestUpdateItemKeepsMatchLink(t *testing.T) {
	existing := reportAt(item.StatusLost, "wallet", "accessories", 1, 1)
	counterpartID := uuid.New()
	existing.SetMatched(counterpartID)

	itemRepo := &fakeItemRepo{items: []*item.Item{existing}}
	linker := &fakeLinker{}
	service := newTestItemService(itemRepo, &fakeUserRepo{}, linker)

	updated, err := service.UpdateItem(context.Background(), inbound.UpdateItemRequest{
		ItemID:      existing.ID,
		UserID:      existing.OwnerID,
		Title:       "brown leather wallet",
		Description: "found near the park",
		Category:    "accessories",
	})

	require.NoError(t, err)
	assert.Equal(t, "brown leather wallet", updated.Title)
	require.NotNil(t, updated.MatchedItemID)
	assert.Equal(t, counterpartID, *updated.MatchedItemID)
	assert.Zero(t, linker.calls, "edits never re-trigger matching")
}

func TestResolveItem(t *testing.T) {
	existing := reportAt(item.StatusLost, "wallet", "accessories", 1, 1)
	itemRepo := &fakeItemRepo{items: []*item.Item{existing}}
	service := newTestItemService(itemRepo, &fakeUserRepo{}, &fakeLinker{})

	require.ErrorIs(t, service.ResolveItem(context.Background(), existing.ID, uuid.New()), shared.ErrNotItemOwner)

	require.NoError(t, service.ResolveItem(context.Background(), existing.ID, existing.OwnerID))
	assert.True(t, existing.Resolved)
}

func TestDeleteItem(t *testing.T) {
	existing := reportAt(item.StatusLost, "wallet", "accessories", 1, 1)
	itemRepo := &fakeItemRepo{items: []*item.Item{existing}}
	service := newTestItemService(itemRepo, &fakeUserRepo{}, &fakeLinker{})

	require.ErrorIs(t, service.DeleteItem(context.Background(), existing.ID, uuid.New()), shared.ErrNotItemOwner)

	require.NoError(t, service.DeleteItem(context.Background(), existing.ID, existing.OwnerID))
	assert.Empty(t, itemRepo.items)

	assert.ErrorIs(t, service.DeleteItem(context.Background(), existing.ID, existing.OwnerID), shared.ErrItemNotFound)
}

func TestBuildLocation(t *testing.T) {
	assert.Nil(t, buildLocation("", nil, nil))

	loc := buildLocation("Main St", nil, nil)
	require.NotNil(t, loc)
	assert.Equal(t, "Main St", loc.Address)

	loc = buildLocation("", fptr(1.0), nil)
	require.NotNil(t, loc)
	assert.Nil(t, loc.Lng)
}
