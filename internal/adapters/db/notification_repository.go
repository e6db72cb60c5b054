package db

import (
	"context"
	"fmt"
	"time"

	"foundly-match-service/internal/domain/notification"
	"foundly-match-service/internal/domain/shared"

	"github.com/google/uuid"
)

// NotificationRepository implements the persisted notification feed
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create persists a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	query := `
		INSERT INTO notifications (id, user_id, from_user_id, kind, title, message, item_id, matched_item_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var matched uuid.NullUUID
	if n.MatchedItemID != nil {
		matched = uuid.NullUUID{UUID: *n.MatchedItemID, Valid: true}
	}

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.FromUserID,
		n.Kind,
		n.Title,
		n.Message,
		n.ItemID,
		matched,
		n.Read,
		n.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user's notifications, newest first
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	query := `
		SELECT id, user_id, from_user_id, kind, title, message, item_id, matched_item_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		var (
			n       notification.Notification
			matched uuid.NullUUID
		)
		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.FromUserID,
			&n.Kind,
			&n.Title,
			&n.Message,
			&n.ItemID,
			&matched,
			&n.Read,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if matched.Valid {
			id := matched.UUID
			n.MatchedItemID = &id
		}
		notifications = append(notifications, &n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a notification as seen
func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1`

	result, err := r.conn.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrNotificationNotFound
	}

	return nil
}

// Delete removes a single notification
func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1`

	result, err := r.conn.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return shared.ErrNotificationNotFound
	}

	return nil
}

// DeleteOlderThan removes notifications created before the cutoff
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`

	result, err := r.conn.GetDB().ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
