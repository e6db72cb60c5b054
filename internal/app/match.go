package app

import (
	"context"
	"errors"
	"time"

	"foundly-match-service/internal/adapters/scheduler"
	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/match"
	"foundly-match-service/internal/domain/notification"
	"foundly-match-service/internal/domain/shared"
	"foundly-match-service/internal/ports/outbound"

	"github.com/rs/zerolog"
)

// MatchService implements the match linker use case: it coordinates the
// single item-created event, pairing the new report with a counterpart and
// alerting nearby owners.
type MatchService struct {
	itemRepo          outbound.ItemRepository
	notificationRepo  outbound.NotificationRepository
	broadcaster       outbound.Broadcaster
	scheduler         *scheduler.RetentionScheduler
	matchRadiusKm     float64
	proximityRadiusKm float64
	retention         time.Duration
	logger            zerolog.Logger
}

type MatchServiceParams struct {
	ItemRepo          outbound.ItemRepository
	NotificationRepo  outbound.NotificationRepository
	Broadcaster       outbound.Broadcaster
	Scheduler         *scheduler.RetentionScheduler
	MatchRadiusKm     float64
	ProximityRadiusKm float64
	Retention         time.Duration
	Logger            zerolog.Logger
}

// NewMatchService creates a new match service
func NewMatchService(params MatchServiceParams) *MatchService {
	return &MatchService{
		itemRepo:          params.ItemRepo,
		notificationRepo:  params.NotificationRepo,
		broadcaster:       params.Broadcaster,
		scheduler:         params.Scheduler,
		matchRadiusKm:     params.MatchRadiusKm,
		proximityRadiusKm: params.ProximityRadiusKm,
		retention:         params.Retention,
		logger:            params.Logger.With().Str("component", "match_service").Logger(),
	}
}

// OnItemCreated processes one item-created event against a snapshot of all
// items. It produces at most one paired cross-reference and a bounded set of
// notifications. Notification delivery is best-effort and never rolls back
// item creation; only snapshot loading can fail the call.
func (service *MatchService) OnItemCreated(ctx context.Context, newItem *item.Item) (*shared.MatchOutcome, error) {
	outcome := &shared.MatchOutcome{ItemID: newItem.ID}

	if err := newItem.Validate(); err != nil {
		service.logger.Warn().Err(err).Str("item_id", newItem.ID.String()).Msg("Item missing required fields, skipping matching")
		return outcome, nil
	}

	snapshot, err := service.itemRepo.GetAll(ctx)
	if err != nil {
		service.logger.Error().Err(err).Msg("Failed to load item snapshot")
		return nil, err
	}

	service.linkMatch(ctx, newItem, snapshot, outcome)
	service.alertNearby(ctx, newItem, snapshot, outcome)

	return outcome, nil
}

// linkMatch runs the match engine and, on a hit, applies the conditional
// pair-update. A concurrent writer may win the race for the same
// counterpart; the loser leaves its item unmatched rather than retrying
// against a different candidate.
func (service *MatchService) linkMatch(ctx context.Context, newItem *item.Item, snapshot []*item.Item, outcome *shared.MatchOutcome) {
	counterpart := match.Find(newItem, snapshot, service.matchRadiusKm)
	if counterpart == nil {
		service.logger.Debug().Str("item_id", newItem.ID.String()).Msg("No counterpart found")
		return
	}

	if newItem.IsMatched() || counterpart.IsMatched() {
		service.logger.Info().
			Str("item_id", newItem.ID.String()).
			Str("counterpart_id", counterpart.ID.String()).
			Msg("Counterpart ineligible: one side is already matched")
		return
	}

	if err := service.itemRepo.LinkItems(ctx, newItem.ID, counterpart.ID); err != nil {
		if errors.Is(err, shared.ErrMatchConflict) {
			// Lost the race to a concurrent writer. The item stays unmatched
			// until a future creation re-triggers matching.
			service.logger.Warn().
				Str("item_id", newItem.ID.String()).
				Str("counterpart_id", counterpart.ID.String()).
				Msg("Conditional pair-update failed, leaving item unmatched")
			return
		}
		service.logger.Error().Err(err).
			Str("item_id", newItem.ID.String()).
			Str("counterpart_id", counterpart.ID.String()).
			Msg("Failed to link items")
		return
	}

	newItem.SetMatched(counterpart.ID)
	counterpart.SetMatched(newItem.ID)
	counterpartID := counterpart.ID
	outcome.MatchedItemID = &counterpartID

	service.logger.Info().
		Str("item_id", newItem.ID.String()).
		Str("counterpart_id", counterpart.ID.String()).
		Str("category", newItem.Category).
		Msg("Items linked")

	service.deliver(ctx, notification.NewMatchFound(newItem, counterpart), outbound.EventTypeMatchFound)
	service.deliver(ctx, notification.NewMatchFound(counterpart, newItem), outbound.EventTypeMatchFound)
}

// alertNearby emits one proximity alert per qualifying item, addressed to
// that item's owner. Independent of the match outcome; a no-location item
// produces no alerts.
func (service *MatchService) alertNearby(ctx context.Context, newItem *item.Item, snapshot []*item.Item, outcome *shared.MatchOutcome) {
	nearby := match.Nearby(newItem, snapshot, service.proximityRadiusKm)

	for _, neighbor := range nearby {
		service.deliver(ctx, notification.NewProximityAlert(neighbor.OwnerID, newItem), outbound.EventTypeProximityAlert)
		outcome.ProximityAlerts++
	}

	if len(nearby) > 0 {
		service.logger.Info().
			Str("item_id", newItem.ID.String()).
			Int("alert_count", len(nearby)).
			Float64("radius_km", service.proximityRadiusKm).
			Msg("Proximity alerts emitted")
	}
}

// deliver persists a notification, schedules its retention expiry, and fans
// it out to the recipient's live feed. Each step is best-effort.
func (service *MatchService) deliver(ctx context.Context, notif *notification.Notification, eventType outbound.EventType) {
	if err := service.notificationRepo.Create(ctx, notif); err != nil {
		service.logger.Error().Err(err).
			Str("notification_id", notif.ID.String()).
			Str("user_id", notif.UserID.String()).
			Msg("Failed to persist notification")
		return
	}

	if service.scheduler != nil {
		if err := service.scheduler.ScheduleExpiry(notif.ID, notif.CreatedAt.Add(service.retention)); err != nil {
			service.logger.Warn().Err(err).
				Str("notification_id", notif.ID.String()).
				Msg("Failed to schedule notification expiry")
		}
	}

	if service.broadcaster == nil {
		return
	}

	event := outbound.Event{
		Type:   eventType,
		UserID: notif.UserID,
		Data: map[string]interface{}{
			"notification_id": notif.ID.String(),
			"item_id":         notif.ItemID.String(),
			"title":           notif.Title,
			"message":         notif.Message,
		},
		Timestamp: notif.CreatedAt.Unix(),
	}
	if notif.MatchedItemID != nil {
		event.Data["matched_item_id"] = notif.MatchedItemID.String()
	}

	if err := service.broadcaster.Publish(ctx, notif.UserID, event); err != nil {
		service.logger.Error().Err(err).
			Str("notification_id", notif.ID.String()).
			Str("user_id", notif.UserID.String()).
			Msg("Failed to broadcast notification")
	}
}
