package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"foundly-match-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBroadcaster fans notification events out over Redis pub/sub. Each
// user has one channel ("user:<id>"); a connected client subscribes to the
// channels of the users whose feeds it follows.
type RedisBroadcaster struct {
	client         *redis.Client
	subscribers    map[string]chan outbound.Event // clientID -> local channel
	pubsubs        map[string]*redis.PubSub       // clientID -> pubsub instance
	clientsToUsers map[string]map[string]bool     // clientID -> userID -> subscribed
	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	logger         zerolog.Logger
}

type RedisBroadcasterParams struct {
	RedisClient *redis.Client
	Logger      zerolog.Logger
}

func NewBroadcaster(params RedisBroadcasterParams) *RedisBroadcaster {
	ctx, cancel := context.WithCancel(context.Background())

	broadcaster := &RedisBroadcaster{
		client:         params.RedisClient,
		subscribers:    make(map[string]chan outbound.Event),
		pubsubs:        make(map[string]*redis.PubSub),
		clientsToUsers: make(map[string]map[string]bool),
		ctx:            ctx,
		cancel:         cancel,
		logger:         params.Logger.With().Str("component", "redis_broadcaster").Logger(),
	}

	return broadcaster
}

func userChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID.String())
}

// Subscribe subscribes a client to events addressed to a user
func (r *RedisBroadcaster) Subscribe(ctx context.Context, userID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check if client is already subscribed to this user's feed
	if r.clientsToUsers[clientID] != nil && r.clientsToUsers[clientID][userID.String()] {
		r.logger.Info().
			Str("client_id", clientID).
			Str("user_id", userID.String()).
			Msg("Client already subscribed to user feed")
		return nil
	}

	// Store the event channel if this is the first subscription
	if r.subscribers[clientID] == nil {
		r.subscribers[clientID] = eventChan
	}

	if r.clientsToUsers[clientID] == nil {
		r.clientsToUsers[clientID] = make(map[string]bool)
	}
	r.clientsToUsers[clientID][userID.String()] = true

	// Get or create pubsub connection for this client
	var pubsub *redis.PubSub
	if existingPubsub, exists := r.pubsubs[clientID]; exists {
		// Client already has a pubsub connection, subscribe to additional channel
		pubsub = existingPubsub
	} else {
		// Create new pubsub connection for this client
		pubsub = r.client.Subscribe(ctx)
		r.pubsubs[clientID] = pubsub

		// Start goroutine to listen for Redis messages and forward to local channel
		go r.listenForRedisMessages(pubsub, clientID, eventChan)
	}

	if err := pubsub.Subscribe(ctx, userChannel(userID)); err != nil {
		r.logger.Error().Err(err).Str("client_id", clientID).Str("user_id", userID.String()).Msg("Failed to subscribe to Redis channel")
		return err
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("user_id", userID.String()).
		Msg("Client subscribed to user feed via Redis")
	return nil
}

// Unsubscribe unsubscribes a client from a user's events
func (r *RedisBroadcaster) Unsubscribe(ctx context.Context, userID uuid.UUID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Remove feed tracking
	if clientUsers, exists := r.clientsToUsers[clientID]; exists {
		delete(clientUsers, userID.String())

		// If no more feeds, clean up the client entry. The local channel is
		// owned by the ws handler; only drop the reference here.
		if len(clientUsers) == 0 {
			delete(r.clientsToUsers, clientID)
			delete(r.subscribers, clientID)

			// Close Redis pubsub connection
			if pubsub, exists := r.pubsubs[clientID]; exists {
				if err := pubsub.Close(); err != nil {
					r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
				}
				delete(r.pubsubs, clientID)
			}
		} else {
			// Unsubscribe from the specific user channel
			if pubsub, exists := r.pubsubs[clientID]; exists {
				if err := pubsub.Unsubscribe(ctx, userChannel(userID)); err != nil {
					r.logger.Error().Err(err).Str("client_id", clientID).Str("user_id", userID.String()).Msg("Error unsubscribing from Redis channel")
				}
			}
		}
	}

	r.logger.Info().
		Str("client_id", clientID).
		Str("user_id", userID.String()).
		Msg("Client unsubscribed from user feed")
	return nil
}

// Publish publishes an event to all clients subscribed to the user via Redis
func (r *RedisBroadcaster) Publish(ctx context.Context, userID uuid.UUID, event outbound.Event) error {
	channelName := userChannel(userID)
	r.logger.Debug().Str("channel_name", channelName).Msg("Publishing event to Redis")

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Publish to Redis
	result := r.client.Publish(ctx, channelName, eventJSON)
	if err := result.Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to publish to Redis")
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	subscriberCount := result.Val()
	r.logger.Info().
		Str("event_type", string(event.Type)).
		Str("user_id", userID.String()).
		Int64("subscriber_count", subscriberCount).
		Msg("Published event to user feed")

	return nil
}

func (r *RedisBroadcaster) GetSubscribers(ctx context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var subscribers []string
	for clientID, feeds := range r.clientsToUsers {
		if feeds[userID.String()] {
			subscribers = append(subscribers, clientID)
		}
	}

	return subscribers, nil
}

func (r *RedisBroadcaster) GetEventChannel(clientID string) <-chan outbound.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if eventChan, exists := r.subscribers[clientID]; exists {
		return eventChan
	}

	return nil
}

// listenForRedisMessages listens for Redis messages and forwards them to the local channel
func (r *RedisBroadcaster) listenForRedisMessages(pubsub *redis.PubSub, clientID string, localChan chan outbound.Event) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("panic", err).Str("client_id", clientID).Msg("Redis message listener panic for client")
		}
	}()

	ch := pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.logger.Info().Str("client_id", clientID).Msg("Redis channel closed for client")
				return
			}

			var event outbound.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to unmarshal Redis message for client")
				continue
			}

			select {
			case localChan <- event:
			default:
				r.logger.Warn().Str("client_id", clientID).Msg("Local channel full for client, dropping event")
			}

		case <-r.ctx.Done():
			r.logger.Info().Str("client_id", clientID).Msg("Redis broadcaster context cancelled for client")
			return
		}
	}
}

func (r *RedisBroadcaster) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Channels belong to the ws handler; drop the references only
	for clientID := range r.subscribers {
		delete(r.subscribers, clientID)
	}

	// Close all pubsub connections
	for clientID, pubsub := range r.pubsubs {
		if err := pubsub.Close(); err != nil {
			r.logger.Error().Err(err).Str("client_id", clientID).Msg("Error closing Redis pubsub for client")
		}
		delete(r.pubsubs, clientID)
	}

	return r.client.Close()
}

func (r *RedisBroadcaster) IsSubscribed(ctx context.Context, userID uuid.UUID, clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clientUsers, exists := r.clientsToUsers[clientID]
	if !exists {
		return false
	}

	return clientUsers[userID.String()]
}
