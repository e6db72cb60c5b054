package app

import (
	"context"
	"time"

	"foundly-match-service/internal/domain/geo"
	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/match"
	"foundly-match-service/internal/domain/shared"
	"foundly-match-service/internal/ports/inbound"
	"foundly-match-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultNearbyRadiusKm is used for device-position queries when the client
// does not supply a radius.
const defaultNearbyRadiusKm = 5

// ItemService implements the item use cases
type ItemService struct {
	itemRepo outbound.ItemRepository
	userRepo outbound.UserRepository
	linker   inbound.MatchLinker
	logger   zerolog.Logger
}

type ItemServiceParams struct {
	ItemRepo outbound.ItemRepository
	UserRepo outbound.UserRepository
	Linker   inbound.MatchLinker
	Logger   zerolog.Logger
}

// NewItemService creates a new item service
func NewItemService(params ItemServiceParams) *ItemService {
	return &ItemService{
		itemRepo: params.ItemRepo,
		userRepo: params.UserRepo,
		linker:   params.Linker,
		logger:   params.Logger.With().Str("component", "item_service").Logger(),
	}
}

// CreateItem validates and persists a new report, then hands it to the match
// linker. A failed match-link is invisible to the reporting user: the item is
// saved either way, just unmatched.
func (service *ItemService) CreateItem(ctx context.Context, req inbound.CreateItemRequest) (*item.Item, *shared.MatchOutcome, error) {
	service.logger.Info().
		Str("owner_id", req.OwnerID.String()).
		Str("status", string(req.Status)).
		Str("category", req.Category).
		Msg("Attempting to create item")

	newItem := &item.Item{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
		OwnerID:     req.OwnerID,
		ContactInfo: req.ContactInfo,
		PhotoURL:    req.PhotoURL,
		Location:    buildLocation(req.Address, req.Lat, req.Lng),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := newItem.Validate(); err != nil {
		service.logger.Warn().Err(err).Msg("Item validation failed")
		return nil, nil, err
	}

	// Validate owner exists
	owner, err := service.userRepo.GetByID(ctx, req.OwnerID)
	if err != nil {
		service.logger.Error().Err(err).Str("owner_id", req.OwnerID.String()).Msg("Owner not found")
		return nil, nil, shared.ErrUserNotFound
	}

	service.logger.Debug().Str("owner_id", owner.ID.String()).Str("name", owner.Name).Msg("Owner validated")

	if err := service.itemRepo.Create(ctx, newItem); err != nil {
		service.logger.Error().Err(err).Msg("Failed to create item")
		return nil, nil, err
	}

	outcome, err := service.linker.OnItemCreated(ctx, newItem)
	if err != nil {
		// The item is already saved; matching failures must not surface to
		// the reporting user.
		service.logger.Error().Err(err).Str("item_id", newItem.ID.String()).Msg("Match linking failed, item saved unmatched")
		outcome = &shared.MatchOutcome{ItemID: newItem.ID}
	}

	service.logger.Info().
		Str("item_id", newItem.ID.String()).
		Bool("matched", outcome.Matched()).
		Int("proximity_alerts", outcome.ProximityAlerts).
		Msg("Item created")

	return newItem, outcome, nil
}

// GetItem retrieves an item by ID
func (service *ItemService) GetItem(ctx context.Context, itemID uuid.UUID) (*item.Item, error) {
	return service.itemRepo.GetByID(ctx, itemID)
}

// ListItems retrieves items with optional status/category/owner filters
func (service *ItemService) ListItems(ctx context.Context, req inbound.ListItemsRequest) ([]*item.Item, error) {
	var (
		items []*item.Item
		err   error
	)

	if req.OwnerID != nil {
		items, err = service.itemRepo.GetByOwnerID(ctx, *req.OwnerID)
	} else {
		items, err = service.itemRepo.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	filtered := items[:0:0]
	for _, it := range items {
		if req.Status != nil && it.Status != *req.Status {
			continue
		}
		if req.Category != "" && it.Category != req.Category {
			continue
		}
		filtered = append(filtered, it)
	}

	return filtered, nil
}

// ListNearby retrieves items within a radius of a device coordinate. The
// coordinate is already resolved by the client; the service never queries a
// device itself.
func (service *ItemService) ListNearby(ctx context.Context, req inbound.NearbyRequest) ([]*item.Item, error) {
	radius := req.RadiusKm
	if radius <= 0 {
		radius = defaultNearbyRadiusKm
	}

	items, err := service.itemRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	origin := geo.Coord{Lat: req.Lat, Lng: req.Lng}
	return match.WithinRadius(origin, items, radius), nil
}

// UpdateItem updates an item's editable fields on behalf of its owner.
// Edits never re-trigger matching, and an existing cross-reference is kept.
func (service *ItemService) UpdateItem(ctx context.Context, req inbound.UpdateItemRequest) (*item.Item, error) {
	existing, err := service.itemRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if !existing.OwnedBy(req.UserID) {
		service.logger.Warn().
			Str("item_id", req.ItemID.String()).
			Str("user_id", req.UserID.String()).
			Msg("Update rejected: not the item owner")
		return nil, shared.ErrNotItemOwner
	}

	existing.Title = req.Title
	existing.Description = req.Description
	existing.Category = req.Category
	existing.ContactInfo = req.ContactInfo
	existing.PhotoURL = req.PhotoURL
	existing.Location = buildLocation(req.Address, req.Lat, req.Lng)
	existing.UpdatedAt = time.Now()

	if err := existing.Validate(); err != nil {
		return nil, err
	}

	if err := service.itemRepo.Update(ctx, existing); err != nil {
		service.logger.Error().Err(err).Str("item_id", req.ItemID.String()).Msg("Failed to update item")
		return nil, err
	}

	return existing, nil
}

// ResolveItem marks an item as closed by its owner
func (service *ItemService) ResolveItem(ctx context.Context, itemID, userID uuid.UUID) error {
	existing, err := service.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if !existing.OwnedBy(userID) {
		return shared.ErrNotItemOwner
	}

	if err := service.itemRepo.SetResolved(ctx, itemID, true); err != nil {
		service.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to resolve item")
		return err
	}

	service.logger.Info().Str("item_id", itemID.String()).Msg("Item resolved")
	return nil
}

// DeleteItem deletes an item on behalf of its owner
func (service *ItemService) DeleteItem(ctx context.Context, itemID, userID uuid.UUID) error {
	existing, err := service.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if !existing.OwnedBy(userID) {
		return shared.ErrNotItemOwner
	}

	if err := service.itemRepo.Delete(ctx, itemID); err != nil {
		service.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to delete item")
		return err
	}

	service.logger.Info().Str("item_id", itemID.String()).Msg("Item deleted")
	return nil
}

// buildLocation assembles the optional location. A request carrying only one
// coordinate is stored as it came in; geo operations treat it as no location.
func buildLocation(address string, lat, lng *float64) *item.Location {
	if address == "" && lat == nil && lng == nil {
		return nil
	}
	return &item.Location{Address: address, Lat: lat, Lng: lng}
}
