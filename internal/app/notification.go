package app

import (
	"context"

	"foundly-match-service/internal/domain/notification"
	"foundly-match-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationService implements the notification feed use cases
type NotificationService struct {
	notificationRepo outbound.NotificationRepository
	logger           zerolog.Logger
}

type NotificationServiceParams struct {
	NotificationRepo outbound.NotificationRepository
	Logger           zerolog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(params NotificationServiceParams) *NotificationService {
	return &NotificationService{
		notificationRepo: params.NotificationRepo,
		logger:           params.Logger.With().Str("component", "notification_service").Logger(),
	}
}

// ListNotifications retrieves a user's notifications, newest first
func (service *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	return service.notificationRepo.GetByUserID(ctx, userID)
}

// MarkRead flags a notification as seen
func (service *NotificationService) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if err := service.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		service.logger.Error().Err(err).Str("notification_id", notificationID.String()).Msg("Failed to mark notification read")
		return err
	}
	return nil
}
