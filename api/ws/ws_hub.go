package ws

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"studyhub/cache"
	"studyhub/service"
)

type subscription struct {
	client *Client
	key    string // redis channel the subscription maps onto
}

// SnapshotLoader turns a subscription key back into the full, freshly
// projected collection it stands for, marshaled as a ws message.
type SnapshotLoader func(ctx context.Context, key string) ([]byte, error)

// snapshotResult is a loaded snapshot on its way back to Run for delivery.
type snapshotResult struct {
	key   string
	bytes []byte
}

// Hub maintains the set of active clients, one redis subscription per live
// key, and fans freshly loaded snapshots out to every subscriber of that key.
// The subscriber maps are owned by the Run loop; redis callbacks only push
// keys onto changeCh, and snapshot loading runs on side goroutines whose
// results come back over snapshotCh for delivery on the loop.
type Hub struct {
	studyCache            cache.StudyCache
	loadSnapshot          SnapshotLoader
	OpenCh                chan *Client
	CloseCh               chan *Client
	SubscribeCh           chan subscription
	UnsubscribeCh         chan subscription
	changeCh              chan string
	UserDeletedCh         chan string
	snapshotCh            chan snapshotResult
	userToClients         map[string]map[*Client]struct{}
	keyToClients          map[string]map[*Client]struct{}
	keyToSubscriberCancel map[string]context.CancelFunc
}

func NewHub(studyCache cache.StudyCache) *Hub {
	return &Hub{
		studyCache:            studyCache,
		OpenCh:                make(chan *Client, 256),
		CloseCh:               make(chan *Client, 256),
		SubscribeCh:           make(chan subscription, 1024),
		UnsubscribeCh:         make(chan subscription, 1024),
		changeCh:              make(chan string, 1024),
		UserDeletedCh:         make(chan string, 64),
		snapshotCh:            make(chan snapshotResult, 256),
		userToClients:         make(map[string]map[*Client]struct{}),
		keyToClients:          make(map[string]map[*Client]struct{}),
		keyToSubscriberCancel: make(map[string]context.CancelFunc),
	}
}

const (
	maxConnectionsPerUser         = 3
	maxAnonymousConnections       = 256
	maxSubscriptionsPerConnection = 50
)

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.OpenCh:
			// Anonymous viewers of public pages share one group
			group := client.user.Id
			if _, ok := h.userToClients[group]; !ok {
				h.userToClients[group] = make(map[*Client]struct{})
			}

			limit := maxConnectionsPerUser
			if group == "" {
				limit = maxAnonymousConnections
			}
			if len(h.userToClients[group]) >= limit {
				log.Printf("Connection group %q reached max connections (%d)", group, limit)
				close(client.Send)
				continue
			}

			h.userToClients[group][client] = struct{}{}

		case client := <-h.CloseCh:
			for key := range client.subscribedKeys {
				delete(h.keyToClients[key], client)
				if len(h.keyToClients[key]) == 0 {
					if cancel, ok := h.keyToSubscriberCancel[key]; ok {
						cancel()
						delete(h.keyToSubscriberCancel, key)
					}
					delete(h.keyToClients, key)
				}
			}
			delete(h.userToClients[client.user.Id], client)
			if len(h.userToClients[client.user.Id]) == 0 {
				delete(h.userToClients, client.user.Id)
			}

		case sub := <-h.SubscribeCh:
			if len(sub.client.subscribedKeys) >= maxSubscriptionsPerConnection {
				log.Printf("Connection by user %q reached max subscriptions (%d)", sub.client.user.Id, maxSubscriptionsPerConnection)
				continue
			}
			if h.keyToClients[sub.key] == nil {
				log.Printf("Subscriber does not exist, creating for key: %s", sub.key)

				ctx, cancel := context.WithCancel(context.Background())
				key := sub.key

				err := h.studyCache.Subscribe(ctx, key, func(messageBytes []byte) {
					h.changeCh <- key
				})
				if err != nil {
					log.Printf("Failed to create redis sub for channel %s: %v", key, err)
					cancel()
					continue
				}

				h.keyToClients[sub.key] = make(map[*Client]struct{})
				h.keyToSubscriberCancel[sub.key] = cancel
			}
			h.keyToClients[sub.key][sub.client] = struct{}{}
			sub.client.subscribedKeys[sub.key] = struct{}{}

			// Initial snapshot so the client has state before the first
			// change event
			go h.loadSnapshotForKey(sub.key)

		case unsub := <-h.UnsubscribeCh:
			delete(h.keyToClients[unsub.key], unsub.client)
			delete(unsub.client.subscribedKeys, unsub.key)
			if len(h.keyToClients[unsub.key]) == 0 {
				if cancel, ok := h.keyToSubscriberCancel[unsub.key]; ok {
					cancel()
					delete(h.keyToSubscriberCancel, unsub.key)
				}
				delete(h.keyToClients, unsub.key)
			}

		case key := <-h.changeCh:
			if len(h.keyToClients[key]) == 0 {
				continue
			}
			go h.loadSnapshotForKey(key)

		case result := <-h.snapshotCh:
			for client := range h.keyToClients[result.key] {
				select {
				case client.Send <- result.bytes:
				default:
					// Slow consumer; it will resync on its next snapshot
				}
			}

		case userId := <-h.UserDeletedCh:
			if clients, ok := h.userToClients[userId]; ok {
				for client := range clients {
					close(client.Send)
					delete(h.userToClients[userId], client)
				}
				delete(h.userToClients, userId)
			}
		}
	}
}

// loadSnapshotForKey rebuilds the full collection for a key and hands the
// result back to Run for delivery. Change events carry no documents; the
// snapshot is the payload.
func (h *Hub) loadSnapshotForKey(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	snapshotBytes, err := h.loadSnapshot(ctx, key)
	if err != nil {
		log.Printf("Failed to load snapshot for key %s: %v", key, err)
		return
	}

	h.snapshotCh <- snapshotResult{key: key, bytes: snapshotBytes}
}

func (h *Hub) InitSubscriptions(shutdownCtx context.Context) error {
	err := h.studyCache.Subscribe(shutdownCtx, "user-deleted", func(message []byte) {
		var userDeletedMsg service.UserDeletedMessage
		if err := json.Unmarshal(message, &userDeletedMsg); err == nil {
			h.UserDeletedCh <- userDeletedMsg.UserId
		}
	})
	if err != nil {
		log.Printf("WS hub failed to subscribe to user-deleted: %v", err)
		return err
	}

	return nil
}
