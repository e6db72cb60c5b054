package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// expirationsKey is the Redis sorted set holding notification IDs scored by
// their expiry time.
const expirationsKey = "notification:expirations"

// NotificationPurger removes notifications from the feed
type NotificationPurger interface {
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionScheduler expires old notifications. IDs are scheduled into a
// Redis sorted set scored by expiry time; a background loop sweeps due
// entries and purges them from the feed. A slower coarse sweep deletes
// anything past the retention window whose schedule entry was lost, e.g.
// when the ZAdd failed at delivery time.
type RetentionScheduler struct {
	redis     *redis.Client
	purger    NotificationPurger
	retention time.Duration
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type RetentionSchedulerParams struct {
	RedisClient *redis.Client
	Purger      NotificationPurger
	Retention   time.Duration
	Logger      zerolog.Logger
}

func NewRetentionScheduler(params RetentionSchedulerParams) *RetentionScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &RetentionScheduler{
		redis:     params.RedisClient,
		purger:    params.Purger,
		retention: params.Retention,
		logger:    params.Logger.With().Str("component", "retention_scheduler").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ScheduleExpiry adds a notification to the expiration schedule
func (s *RetentionScheduler) ScheduleExpiry(notificationID uuid.UUID, expireAt time.Time) error {
	score := float64(expireAt.Unix())

	err := s.redis.ZAdd(s.ctx, expirationsKey, redis.Z{
		Score:  score,
		Member: notificationID.String(),
	}).Err()

	if err != nil {
		s.logger.Error().Err(err).Str("notification_id", notificationID.String()).Msg("Failed to schedule notification expiry")
		return fmt.Errorf("failed to schedule notification expiry: %w", err)
	}

	s.logger.Debug().
		Str("notification_id", notificationID.String()).
		Time("expire_at", expireAt).
		Msg("Notification scheduled for expiry")

	return nil
}

// Start begins the scheduler loop
func (s *RetentionScheduler) Start() {
	s.logger.Info().Msg("Starting notification retention scheduler")

	s.wg.Add(1)
	go s.schedulerLoop()
}

// Stop gracefully stops the scheduler
func (s *RetentionScheduler) Stop() {
	s.logger.Info().Msg("Stopping notification retention scheduler")
	s.cancel()
	s.wg.Wait()
}

// schedulerLoop runs the main sweeping loop
func (s *RetentionScheduler) schedulerLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	coarseTicker := time.NewTicker(1 * time.Hour)
	defer coarseTicker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepExpired()
		case <-coarseTicker.C:
			s.sweepOld()
		case <-s.ctx.Done():
			s.logger.Info().Msg("Retention scheduler loop stopped")
			return
		}
	}
}

// sweepExpired finds and purges expired notifications
func (s *RetentionScheduler) sweepExpired() {
	now := time.Now().Unix()

	expired, err := s.redis.ZRangeByScore(s.ctx, expirationsKey, &redis.ZRangeBy{
		Min:   "0",
		Max:   strconv.FormatInt(now, 10),
		Count: 100, // Process max 100 per sweep
	}).Result()

	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get expired notifications")
		return
	}

	if len(expired) > 0 {
		s.logger.Debug().Int("count", len(expired)).Msg("Found expired notifications")
	}

	for _, idStr := range expired {
		notificationID, err := uuid.Parse(idStr)
		if err != nil {
			s.logger.Error().Err(err).Str("notification_id", idStr).Msg("Invalid notification ID in expiration schedule")
			s.redis.ZRem(s.ctx, expirationsKey, idStr)
			continue
		}

		s.purgeNotification(notificationID)
	}
}

// sweepOld bulk-deletes notifications past the retention window regardless
// of their schedule entries
func (s *RetentionScheduler) sweepOld() {
	if s.retention <= 0 {
		return
	}

	cutoff := time.Now().Add(-s.retention)

	removed, err := s.purger.DeleteOlderThan(s.ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Time("cutoff", cutoff).Msg("Coarse retention sweep failed")
		return
	}

	if removed > 0 {
		s.logger.Info().Int64("count", removed).Time("cutoff", cutoff).Msg("Coarse retention sweep purged notifications")
	}
}

// purgeNotification removes one expired notification from the feed and the schedule
func (s *RetentionScheduler) purgeNotification(notificationID uuid.UUID) {
	defer s.redis.ZRem(s.ctx, expirationsKey, notificationID.String())

	if err := s.purger.Delete(s.ctx, notificationID); err != nil {
		s.logger.Error().Err(err).Str("notification_id", notificationID.String()).Msg("Failed to purge expired notification")
		return
	}

	s.logger.Debug().Str("notification_id", notificationID.String()).Msg("Expired notification purged")
}
