package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"studyhub/cache"
	"studyhub/mq"
	"studyhub/store"
)

// PurgeUserDataMessage asks the consumer to delete every document a deleted
// account owned. The profile itself is already gone by the time this runs.
type PurgeUserDataMessage struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PurgeConsumer struct {
	purgeQueue mq.MessageQueue
	studyStore store.StudyStore
	studyCache cache.StudyCache
}

func NewPurgeConsumer(purgeQueue mq.MessageQueue, studyStore store.StudyStore, studyCache cache.StudyCache) *PurgeConsumer {
	return &PurgeConsumer{
		purgeQueue: purgeQueue,
		studyStore: studyStore,
		studyCache: studyCache,
	}
}

// Allow up to 5 minutes for the throttled batch deletion of the owner partition
const visibilityTimeout = 300

func (purgeConsumer PurgeConsumer) Run(shutdownCtx context.Context) {
	for {
		msg, err := purgeConsumer.purgeQueue.Receive(shutdownCtx, visibilityTimeout)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Printf("purgeConsumer receive error: %v", err)
			continue
		}

		if msg == nil {
			continue
		}

		var purgeMsg PurgeUserDataMessage
		if err := json.Unmarshal([]byte(msg.Body), &purgeMsg); err != nil {
			continue
		}

		purgeConsumer.handlePurge(purgeMsg)

		err = purgeConsumer.purgeQueue.Delete(context.Background(), msg)
		if err != nil {
			log.Printf("purgeConsumer delete error: %v", err)
			continue
		}
	}
}

func (purgeConsumer PurgeConsumer) handlePurge(purgeMsg PurgeUserDataMessage) {
	// timeout should be a little less than queue visibility timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(visibilityTimeout-1)*time.Second)
	defer cancel()

	if err := purgeConsumer.studyStore.PurgeOwnerItems(ctx, purgeMsg.UserId); err != nil {
		log.Printf("Failed to purge items for user %s: %v", purgeMsg.UserId, err)
		return
	}

	// Drop any cached public resolutions and counters for the deleted account
	if purgeMsg.DisplayName != "" {
		if err := purgeConsumer.studyCache.InvalidateSlugs(ctx, purgeMsg.DisplayName); err != nil {
			log.Printf("Failed to invalidate slugs for %s: %v", purgeMsg.DisplayName, err)
		}
	}
	if err := purgeConsumer.studyCache.InvalidateUserTaskCounts(ctx, purgeMsg.UserId); err != nil {
		log.Printf("Failed to invalidate task counts for user %s: %v", purgeMsg.UserId, err)
	}

	log.Printf("Purged data for deleted user %s", purgeMsg.UserId)
}
