package ws

import (
	"context"
	"net/http"
	"sync"

	"foundly-match-service/internal/domain/item"
	"foundly-match-service/internal/domain/shared"
	"foundly-match-service/internal/ports/inbound"
	"foundly-match-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WsHandler manages WebSocket connections and message routing
type WsHandler struct {
	clients             map[string]*WsClient // clientID -> Client
	clientsMu           sync.RWMutex
	eventChannels       map[string]chan outbound.Event // clientID -> local event channel
	channelsMu          sync.RWMutex
	upgrader            websocket.Upgrader
	itemService         inbound.ItemService
	notificationService inbound.NotificationService
	broadcaster         outbound.Broadcaster
	logger              zerolog.Logger
}

type WsHandlerParams struct {
	Upgrader            websocket.Upgrader
	ItemService         inbound.ItemService
	NotificationService inbound.NotificationService
	Broadcaster         outbound.Broadcaster
	Logger              zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(params WsHandlerParams) *WsHandler {
	return &WsHandler{
		clients:             make(map[string]*WsClient),
		eventChannels:       make(map[string]chan outbound.Event),
		upgrader:            params.Upgrader,
		itemService:         params.ItemService,
		notificationService: params.NotificationService,
		broadcaster:         params.Broadcaster,
		logger:              params.Logger.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleWebSocket handles WebSocket connection upgrades. Connecting clients
// identify with a user_id query param and are subscribed to their own
// notification feed right away.
func (handler *WsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userIDStr := r.URL.Query().Get("user_id")
	if userIDStr == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		http.Error(w, "invalid user_id format", http.StatusBadRequest)
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		handler.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	// Create new client
	client := NewClient(WsClientParams{
		UserID:  userID,
		Conn:    conn,
		Handler: handler,
	})

	// Register client
	handler.registerClient(client)

	// Create local event channel for this client
	eventChan := handler.createEventChannel(client.id)

	// Subscribe the client to its own notification feed
	if err := handler.broadcaster.Subscribe(r.Context(), userID, client.id, eventChan); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Str("user_id", userID.String()).Msg("Failed to subscribe client to own feed")
	}

	// Start client message handling
	client.Start()

	// Start listening for broadcast events for this client
	go handler.listenForClientEvents(client)

	// Wait for client to disconnect
	go func() {
		<-client.ctx.Done()
		handler.unregisterClient(client)
	}()

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Msg("WebSocket client connected")
}

// createEventChannel creates a local event channel for a client
func (handler *WsHandler) createEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		return eventChan
	}

	eventChan := make(chan outbound.Event, 100)
	handler.eventChannels[clientID] = eventChan

	handler.logger.Debug().Str("client_id", clientID).Msg("Created local event channel for client")
	return eventChan
}

func (handler *WsHandler) getEventChannel(clientID string) chan outbound.Event {
	handler.channelsMu.RLock()
	defer handler.channelsMu.RUnlock()

	return handler.eventChannels[clientID]
}

func (handler *WsHandler) removeEventChannel(clientID string) {
	handler.channelsMu.Lock()
	defer handler.channelsMu.Unlock()

	if eventChan, exists := handler.eventChannels[clientID]; exists {
		close(eventChan)
		delete(handler.eventChannels, clientID)
		handler.logger.Debug().Str("client_id", clientID).Msg("Removed local event channel for client")
	}
}

func (handler *WsHandler) registerClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()
	handler.clients[client.id] = client
	handler.logger.Debug().Str("client_id", client.id).Int("total_clients", len(handler.clients)).Msg("Client registered")
}

func (handler *WsHandler) unregisterClient(client *WsClient) {
	handler.clientsMu.Lock()
	defer handler.clientsMu.Unlock()

	// Remove client from registry
	delete(handler.clients, client.id)

	// Stop the client
	client.Stop()

	// Remove local event channel
	handler.removeEventChannel(client.id)

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Int("total_clients", len(handler.clients)).Msg("WebSocket client disconnected")
}

// listenForClientEvents forwards broadcast events to the WebSocket connection
func (handler *WsHandler) listenForClientEvents(client *WsClient) {
	handler.logger.Debug().Str("client_id", client.id).Msg("Starting event listener for client")

	// Get the local event channel for this client
	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client - this should not happen")
		return
	}

	// Listen for events and forward to WebSocket
	for {
		select {
		case event := <-eventChan:
			wsMessage := handler.convertEventToMessage(event)

			if err := client.Send(wsMessage); err != nil {
				handler.logger.Error().
					Err(err).Str("client_id", client.id).Msg("Failed to send event to WebSocket client")
			} else {
				handler.logger.Debug().Str("client_id", client.id).Str("event_type", string(event.Type)).
					Msg("Sent event to WebSocket client")
			}

		case <-client.ctx.Done():
			handler.logger.Debug().Str("client_id", client.id).Msg("Client disconnected, stopping event listener")
			return
		}
	}
}

func (handler *WsHandler) HandleClientMessage(client *WsClient, msg *ClientMessage) error {
	switch msg.Type {
	case MessageTypeCreateItem:
		return handler.handleCreateItem(client, msg)

	case MessageTypeGetItem:
		return handler.handleGetItem(client, msg)

	case MessageTypeListItems:
		return handler.handleListItems(client, msg)

	case MessageTypeNearbyItems:
		return handler.handleNearbyItems(client, msg)

	case MessageTypeUpdateItem:
		return handler.handleUpdateItem(client, msg)

	case MessageTypeResolveItem:
		return handler.handleResolveItem(client, msg)

	case MessageTypeDeleteItem:
		return handler.handleDeleteItem(client, msg)

	case MessageTypeListNotifications:
		return handler.handleListNotifications(client)

	case MessageTypeMarkRead:
		return handler.handleMarkRead(client, msg)

	case MessageTypeSubscribe:
		return handler.handleSubscribe(client)

	case MessageTypeUnsubscribe:
		return handler.handleUnsubscribe(client)

	default:
		handler.logger.Warn().Str("client_id", client.id).Str("message_type", string(msg.Type)).Msg("Unknown message type from client")
		return shared.ErrUnknownMessageType
	}
}

func (handler *WsHandler) convertEventToMessage(event outbound.Event) *ServerMessage {
	msg := &ServerMessage{
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}

	switch event.Type {
	case outbound.EventTypeMatchFound:
		msg.Type = MessageTypeMatchFound
	case outbound.EventTypeProximityAlert:
		msg.Type = MessageTypeProximityAlert
	case outbound.EventTypeItemCreated:
		msg.Type = MessageTypeItemCreated
	default:
		msg.Type = MessageTypeItemUpdate
	}

	return msg
}

// GetConnectedClients returns the number of connected clients
func (handler *WsHandler) GetConnectedClients() int {
	handler.clientsMu.RLock()
	defer handler.clientsMu.RUnlock()
	return len(handler.clients)
}

// handleCreateItem handles the creation of a lost/found report
func (handler *WsHandler) handleCreateItem(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	req := inbound.CreateItemRequest{
		OwnerID:     client.userID,
		Title:       stringField(msg.Data, "title"),
		Description: stringField(msg.Data, "description"),
		Status:      item.Status(stringField(msg.Data, "status")),
		Category:    stringField(msg.Data, "category"),
		ContactInfo: stringField(msg.Data, "contact_info"),
		PhotoURL:    stringField(msg.Data, "photo_url"),
		Address:     stringField(msg.Data, "address"),
		Lat:         floatField(msg.Data, "lat"),
		Lng:         floatField(msg.Data, "lng"),
	}

	created, outcome, err := handler.itemService.CreateItem(ctx, req)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeItemCreated)
	response.ItemID = &created.ID
	response.Data["item"] = created
	response.Data["matched"] = outcome.Matched()
	if outcome.MatchedItemID != nil {
		response.Data["matched_item_id"] = outcome.MatchedItemID.String()
	}
	response.Data["proximity_alerts"] = outcome.ProximityAlerts

	handler.logger.Info().Str("item_id", created.ID.String()).Str("user_id", client.userID.String()).Msg("Item created via WebSocket")
	return client.Send(response)
}

// handleGetItem handles getting item details
func (handler *WsHandler) handleGetItem(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	found, err := handler.itemService.GetItem(ctx, *msg.ItemID)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.ItemID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeItemUpdate)
	response.ItemID = msg.ItemID
	response.Data["item"] = found

	return client.Send(response)
}

// handleListItems handles listing items with optional filters
func (handler *WsHandler) handleListItems(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	req := inbound.ListItemsRequest{
		Category: stringField(msg.Data, "category"),
	}
	if statusStr := stringField(msg.Data, "status"); statusStr != "" {
		status := item.Status(statusStr)
		req.Status = &status
	}
	if mine, ok := msg.Data["mine"].(bool); ok && mine {
		ownerID := client.userID
		req.OwnerID = &ownerID
	}

	items, err := handler.itemService.ListItems(ctx, req)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeItemUpdate)
	response.Data["items"] = items
	response.Data["count"] = len(items)

	return client.Send(response)
}

// handleNearbyItems handles map-style queries around a device position
func (handler *WsHandler) handleNearbyItems(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	req := inbound.NearbyRequest{
		Lat: msg.Data["lat"].(float64),
		Lng: msg.Data["lng"].(float64),
	}
	if radius, ok := msg.Data["radius_km"].(float64); ok {
		req.RadiusKm = radius
	}

	items, err := handler.itemService.ListNearby(ctx, req)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeItemUpdate)
	response.Data["items"] = items
	response.Data["count"] = len(items)
	response.Data["radius_km"] = req.RadiusKm

	return client.Send(response)
}

// handleUpdateItem handles editing an item's fields
func (handler *WsHandler) handleUpdateItem(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	req := inbound.UpdateItemRequest{
		ItemID:      *msg.ItemID,
		UserID:      client.userID,
		Title:       stringField(msg.Data, "title"),
		Description: stringField(msg.Data, "description"),
		Category:    stringField(msg.Data, "category"),
		ContactInfo: stringField(msg.Data, "contact_info"),
		PhotoURL:    stringField(msg.Data, "photo_url"),
		Address:     stringField(msg.Data, "address"),
		Lat:         floatField(msg.Data, "lat"),
		Lng:         floatField(msg.Data, "lng"),
	}

	updated, err := handler.itemService.UpdateItem(ctx, req)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.ItemID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeItemUpdate)
	response.ItemID = msg.ItemID
	response.Data["item"] = updated

	return client.Send(response)
}

// handleResolveItem handles the owner closing a report
func (handler *WsHandler) handleResolveItem(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	if err := handler.itemService.ResolveItem(ctx, *msg.ItemID, client.userID); err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.ItemID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeItemUpdate)
	response.ItemID = msg.ItemID
	response.Data["resolved"] = true

	return client.Send(response)
}

// handleDeleteItem handles the owner deleting a report
func (handler *WsHandler) handleDeleteItem(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	if err := handler.itemService.DeleteItem(ctx, *msg.ItemID, client.userID); err != nil {
		errorMsg := NewErrorMessage(err.Error(), msg.ItemID)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeItemUpdate)
	response.ItemID = msg.ItemID
	response.Data["deleted"] = true

	return client.Send(response)
}

// handleListNotifications returns the client's persisted notification feed
func (handler *WsHandler) handleListNotifications(client *WsClient) error {
	ctx := context.Background()

	notifications, err := handler.notificationService.ListNotifications(ctx, client.userID)
	if err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeNotificationList)
	response.Data["notifications"] = notifications
	response.Data["count"] = len(notifications)

	return client.Send(response)
}

// handleMarkRead flags a notification as seen
func (handler *WsHandler) handleMarkRead(client *WsClient, msg *ClientMessage) error {
	ctx := context.Background()

	// Validated in ClientMessage.Validate
	notificationID, err := uuid.Parse(msg.Data["notification_id"].(string))
	if err != nil {
		return shared.ErrNotificationIDInvalid
	}

	if err := handler.notificationService.MarkRead(ctx, notificationID); err != nil {
		errorMsg := NewErrorMessage(err.Error(), nil)
		return client.Send(errorMsg)
	}

	response := NewServerMessage(MessageTypeNotificationList)
	response.Data["notification_id"] = notificationID.String()
	response.Data["read"] = true

	return client.Send(response)
}

// handleSubscribe re-subscribes the client to its own notification feed
func (handler *WsHandler) handleSubscribe(client *WsClient) error {
	ctx := context.Background()

	eventChan := handler.getEventChannel(client.id)
	if eventChan == nil {
		handler.logger.Error().Str("client_id", client.id).Msg("No event channel found for client")
		return shared.ErrClientEventChannelNotFound
	}

	if err := handler.broadcaster.Subscribe(ctx, client.userID, client.id, eventChan); err != nil {
		handler.logger.Error().Err(err).Str("client_id", client.id).Str("user_id", client.userID.String()).Msg("Failed to subscribe to notification feed")
		return err
	}

	response := NewServerMessage(MessageTypeNotificationList)
	response.Data["status"] = "subscribed"

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Msg("Client subscribed to notification feed")
	return client.Send(response)
}

// handleUnsubscribe mutes the client's live notification feed
func (handler *WsHandler) handleUnsubscribe(client *WsClient) error {
	ctx := context.Background()

	if err := handler.broadcaster.Unsubscribe(ctx, client.userID, client.id); err != nil {
		return err
	}

	response := NewServerMessage(MessageTypeNotificationList)
	response.Data["status"] = "unsubscribed"

	handler.logger.Info().Str("client_id", client.id).Str("user_id", client.userID.String()).Msg("Client unsubscribed from notification feed")
	return client.Send(response)
}

func stringField(data map[string]interface{}, key string) string {
	if value, ok := data[key].(string); ok {
		return value
	}
	return ""
}

func floatField(data map[string]interface{}, key string) *float64 {
	if value, ok := data[key].(float64); ok {
		return &value
	}
	return nil
}
