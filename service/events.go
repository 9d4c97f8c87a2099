package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Collection string

const (
	CollectionTopics    Collection = "topics"
	CollectionTasks     Collection = "tasks"
	CollectionReminders Collection = "reminders"
	CollectionNotes     Collection = "notes"
)

// ChangeEvent is the pub/sub notification emitted after every successful
// mutation. Subscribers treat it as an invalidation signal and re-pull the
// full collection snapshot; the event never carries document bodies.
type ChangeEvent struct {
	Collection Collection `json:"collection"`
	Action     string     `json:"action"` // created / updated / deleted
	Id         string     `json:"id"`
	OwnerId    string     `json:"ownerId"`
	TopicId    string     `json:"topicId,omitempty"`
}

func OwnerChannel(ownerId string, collection Collection) string {
	return "sync:" + ownerId + ":" + string(collection)
}

// TopicChannel carries the owner id so subscribers can rebuild the snapshot
// from the owner partition without an extra lookup.
func TopicChannel(ownerId string, topicId string, collection Collection) string {
	return "topic:" + ownerId + ":" + topicId + ":" + string(collection)
}

// ParseChannel recovers the owner, topic, and collection a channel name was
// built from. TopicId is empty for owner-wide channels.
func ParseChannel(channel string) (ownerId string, topicId string, collection Collection, ok bool) {
	parts := strings.Split(channel, ":")
	switch {
	case len(parts) == 3 && parts[0] == "sync":
		return parts[1], "", Collection(parts[2]), true
	case len(parts) == 4 && parts[0] == "topic":
		return parts[1], parts[2], Collection(parts[3]), true
	}
	return "", "", "", false
}

// publishChange fans the event out best-effort. A dropped notification only
// delays a snapshot until the next change, so failures are logged, not returned.
func (s *Service) publishChange(ev ChangeEvent) {
	go func() {
		evBytes, err := json.Marshal(ev)
		if err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.Cache.Publish(ctx, OwnerChannel(ev.OwnerId, ev.Collection), evBytes); err != nil {
			log.Printf("Failed to publish change event: %v", err)
		}

		// Task and reminder changes also feed public topic pages
		if ev.TopicId != "" && (ev.Collection == CollectionTasks || ev.Collection == CollectionReminders) {
			if err := s.Cache.Publish(ctx, TopicChannel(ev.OwnerId, ev.TopicId, ev.Collection), evBytes); err != nil {
				log.Printf("Failed to publish topic change event: %v", err)
			}
		}
	}()
}
