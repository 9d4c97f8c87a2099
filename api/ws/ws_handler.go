package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"studyhub/models"
	"studyhub/service"
)

type Handler struct {
	Service *service.Service
	Hub     *Hub
}

func NewHandler(svc *service.Service, hub *Hub) *Handler {
	h := &Handler{
		Service: svc,
		Hub:     hub,
	}
	hub.loadSnapshot = h.LoadSnapshot
	return h
}

func (h *Handler) NewWsUpgrader(requiredOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == requiredOrigin
		},
		Subprotocols: []string{"studyhub-v1"},
	}
}

// ServeWS handles websocket requests from the peer. Authenticated clients
// send the JWT as a second subprotocol entry; a lone protocol entry opens an
// anonymous connection limited to public topic subscriptions.
func (h *Handler) ServeWS(wsUpgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request, shutdownCtx context.Context) {
	protocols := r.Header.Get("Sec-WebSocket-Protocol")
	protocolsSplit := strings.Split(protocols, ",")

	if len(protocolsSplit) != 1 && len(protocolsSplit) != 2 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	var authErr error
	if len(protocolsSplit) == 2 {
		token := strings.TrimSpace(protocolsSplit[1])
		user, authErr = h.Service.AuthenticateToken(r.Context(), token)
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade ws connection: %v", err)
		return
	}

	// Must upgrade the connection in order to be able to send custom close message
	if authErr != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Unauthenticated"),
		)
		conn.Close()
		return
	}

	client := NewClient(h.Hub, conn, user, h.HandleWsMessage)

	// Seed the task counters so stats reads served from redis start warm
	if user.Id != "" {
		h.Service.Cache.SeedUserTaskCounts(context.Background(), user.Id, user.TaskCount, user.CompletedCount)
	}

	h.Hub.OpenCh <- client

	// Start pumps
	go client.ReadPump()
	go client.WritePump(shutdownCtx)
}

// Websocket message structs
type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type collectionMessage struct {
	Collection service.Collection `json:"collection"`
}

type publicTopicMessage struct {
	Username  string `json:"username"`
	TopicName string `json:"topicName"`
}

type responseMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (h *Handler) HandleWsMessage(client *Client, messageType int, messageBytes []byte) {
	var msg message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		log.Printf("Invalid JSON: %v", err)
		return
	}

	var resp responseMessage

	switch msg.Type {
	case "subscribe":
		var colMsg collectionMessage
		if err := json.Unmarshal(msg.Data, &colMsg); err != nil {
			log.Printf("Invalid subscribe data: %v", err)
			return
		}
		resp = h.handleSubscribe(client, colMsg)

	case "unsubscribe":
		var colMsg collectionMessage
		if err := json.Unmarshal(msg.Data, &colMsg); err != nil {
			log.Printf("Invalid unsubscribe data: %v", err)
			return
		}
		resp = h.handleUnsubscribe(client, colMsg)

	case "subscribe_public":
		var topicMsg publicTopicMessage
		if err := json.Unmarshal(msg.Data, &topicMsg); err != nil {
			log.Printf("Invalid subscribe_public data: %v", err)
			return
		}
		resp = h.handleSubscribePublic(client, topicMsg)

	case "unsubscribe_public":
		var topicMsg publicTopicMessage
		if err := json.Unmarshal(msg.Data, &topicMsg); err != nil {
			log.Printf("Invalid unsubscribe_public data: %v", err)
			return
		}
		resp = h.handleUnsubscribePublic(client, topicMsg)

	default:
		log.Printf("Unknown message type: %v", msg.Type)
	}

	if resp.Type != "" {
		respBytes, err := json.Marshal(resp)
		if err != nil {
			log.Printf("Error marshaling response JSON: %v", err)
			return
		}
		client.Send <- respBytes
	}
}

func validCollection(collection service.Collection) bool {
	switch collection {
	case service.CollectionTopics, service.CollectionTasks, service.CollectionReminders, service.CollectionNotes:
		return true
	}
	return false
}

// handleSubscribe attaches the client to one of its own collections. Every
// change to the collection afterwards pushes a fresh full snapshot.
func (h *Handler) handleSubscribe(client *Client, colMsg collectionMessage) responseMessage {
	resp := responseMessage{
		Type: "subscribe_response",
	}

	if client.user.Id == "" || !validCollection(colMsg.Collection) {
		resp.Data = map[string]any{"success": false, "collection": colMsg.Collection}
		return resp
	}

	key := service.OwnerChannel(client.user.Id, colMsg.Collection)
	h.Hub.SubscribeCh <- subscription{client: client, key: key}
	resp.Data = map[string]any{"success": true, "collection": colMsg.Collection}

	return resp
}

func (h *Handler) handleUnsubscribe(client *Client, colMsg collectionMessage) responseMessage {
	resp := responseMessage{
		Type: "unsubscribe_response",
	}

	if client.user.Id == "" || !validCollection(colMsg.Collection) {
		resp.Data = map[string]any{"success": false, "collection": colMsg.Collection}
		return resp
	}

	key := service.OwnerChannel(client.user.Id, colMsg.Collection)
	h.Hub.UnsubscribeCh <- subscription{client: client, key: key}
	resp.Data = map[string]any{"success": true, "collection": colMsg.Collection}

	return resp
}

// handleSubscribePublic resolves a shared topic URL and attaches the client
// to that topic's task and reminder feeds. Resolution doubles as the access
// check: private and missing topics never resolve.
func (h *Handler) handleSubscribePublic(client *Client, topicMsg publicTopicMessage) responseMessage {
	resp := responseMessage{
		Type: "subscribe_public_response",
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	view, err := h.Service.ResolvePublicTopic(ctx, topicMsg.Username, topicMsg.TopicName)
	if err != nil {
		log.Printf("Public topic subscribe failed for %s/%s: %v", topicMsg.Username, topicMsg.TopicName, err)
		resp.Data = map[string]any{"success": false, "username": topicMsg.Username, "topicName": topicMsg.TopicName}
		return resp
	}

	for _, collection := range []service.Collection{service.CollectionTasks, service.CollectionReminders} {
		key := service.TopicChannel(view.Owner.Id, view.Topic.Id, collection)
		h.Hub.SubscribeCh <- subscription{client: client, key: key}
	}

	resp.Data = map[string]any{
		"success":   true,
		"username":  topicMsg.Username,
		"topicName": topicMsg.TopicName,
		"view":      view,
	}

	return resp
}

func (h *Handler) handleUnsubscribePublic(client *Client, topicMsg publicTopicMessage) responseMessage {
	resp := responseMessage{
		Type: "unsubscribe_public_response",
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	view, err := h.Service.ResolvePublicTopic(ctx, topicMsg.Username, topicMsg.TopicName)
	if err != nil {
		resp.Data = map[string]any{"success": false, "username": topicMsg.Username, "topicName": topicMsg.TopicName}
		return resp
	}

	for _, collection := range []service.Collection{service.CollectionTasks, service.CollectionReminders} {
		key := service.TopicChannel(view.Owner.Id, view.Topic.Id, collection)
		h.Hub.UnsubscribeCh <- subscription{client: client, key: key}
	}

	resp.Data = map[string]any{"success": true, "username": topicMsg.Username, "topicName": topicMsg.TopicName}

	return resp
}

// LoadSnapshot rebuilds the full result set a subscription key stands for.
// It is the hub's SnapshotLoader: change events carry no documents, so this
// is what subscribed clients actually receive.
func (h *Handler) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	ownerId, topicId, collection, ok := service.ParseChannel(key)
	if !ok {
		return nil, fmt.Errorf("unrecognized subscription key: %s", key)
	}

	// Topic-scoped keys feed public pages; stop delivering once the topic
	// is no longer shared.
	if topicId != "" {
		if _, err := h.Service.GetPublicTopic(ctx, ownerId, topicId); err != nil {
			return nil, err
		}
	}

	var items any
	var err error
	switch collection {
	case service.CollectionTopics:
		items, err = h.Service.ListTopicsWithProgress(ctx, ownerId)
	case service.CollectionTasks:
		items, err = h.Service.ListTasks(ctx, ownerId, topicId)
	case service.CollectionReminders:
		items, err = h.Service.ListReminders(ctx, ownerId, topicId)
	case service.CollectionNotes:
		items, err = h.Service.ListNotes(ctx, ownerId, topicId)
	default:
		return nil, fmt.Errorf("unrecognized collection in key: %s", key)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(responseMessage{
		Type: "snapshot",
		Data: map[string]any{
			"collection": collection,
			"topicId":    topicId,
			"items":      items,
		},
	})
}
