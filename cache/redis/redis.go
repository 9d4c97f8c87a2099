package redis

import (
	"context"
	"crypto/tls"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"studyhub/cache"
)

type RedisStudyCache struct {
	client redis.UniversalClient
}

func NewRedisStudyCache(ctx context.Context, devMode bool, redisEndpoint string) (*RedisStudyCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisStudyCache{client: client}, nil
}

func (redisCache *RedisStudyCache) Publish(ctx context.Context, channel string, message []byte) error {
	if err := redisCache.client.Publish(ctx, channel, message).Err(); err != nil {
		return err
	}
	return nil
}

func (redisCache *RedisStudyCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	pubsub := redisCache.client.Subscribe(ctx, channel)
	// Ensure subscription is established
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		log.Printf("Pubsub channel closed: %s", channel)
		return err
	}

	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()

	return nil
}

const cacheTTL = 10 * time.Minute

// Helper functions to generate Redis keys with hash tags for cluster compatibility
func buildSlugsKey(displayName string) string {
	return "slugs:{" + displayName + "}"
}

func buildUserCountsKey(userId string) string {
	return "user:{" + userId + "}:task_counts"
}

// Slug resolutions for one display name live in a single hash keyed by topic
// name, so a rename or privacy toggle can drop every cached entry for that
// user with one DEL.
func (redisCache *RedisStudyCache) SetResolvedSlug(ctx context.Context, displayName string, topicName string, resolved cache.ResolvedSlug) error {
	key := buildSlugsKey(displayName)

	pipe := redisCache.client.Pipeline()
	pipe.HSet(ctx, key, topicName, resolved.OwnerId+"|"+resolved.TopicId)
	pipe.Expire(ctx, key, cacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (redisCache *RedisStudyCache) GetResolvedSlug(ctx context.Context, displayName string, topicName string) (cache.ResolvedSlug, bool, error) {
	key := buildSlugsKey(displayName)

	val, err := redisCache.client.HGet(ctx, key, topicName).Result()
	if err != nil {
		if err == redis.Nil {
			return cache.ResolvedSlug{}, false, nil
		}
		return cache.ResolvedSlug{}, false, err
	}

	ownerId, topicId, ok := strings.Cut(val, "|")
	if !ok {
		return cache.ResolvedSlug{}, false, nil
	}

	redisCache.client.Expire(ctx, key, cacheTTL)
	return cache.ResolvedSlug{OwnerId: ownerId, TopicId: topicId}, true, nil
}

func (redisCache *RedisStudyCache) InvalidateSlugs(ctx context.Context, displayName string) error {
	return redisCache.client.Del(ctx, buildSlugsKey(displayName)).Err()
}

// User task counts mirror the profile counters for cheap reads. Both live in
// one hash so a seed or increment stays a single round trip.
func (redisCache *RedisStudyCache) SeedUserTaskCounts(ctx context.Context, userId string, taskCount int, completedCount int) error {
	key := buildUserCountsKey(userId)

	ok, err := redisCache.client.HSetNX(ctx, key, "tasks", taskCount).Result()
	if err != nil {
		return err
	}
	if ok {
		pipe := redisCache.client.Pipeline()
		pipe.HSet(ctx, key, "completed", completedCount)
		pipe.Expire(ctx, key, cacheTTL)
		_, err = pipe.Exec(ctx)
	}
	return err
}

func (redisCache *RedisStudyCache) IncrementUserTaskCounts(ctx context.Context, userId string, taskDelta int, completedDelta int) error {
	key := buildUserCountsKey(userId)

	pipe := redisCache.client.Pipeline()
	if taskDelta != 0 {
		pipe.HIncrBy(ctx, key, "tasks", int64(taskDelta))
	}
	if completedDelta != 0 {
		pipe.HIncrBy(ctx, key, "completed", int64(completedDelta))
	}
	pipe.Expire(ctx, key, cacheTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (redisCache *RedisStudyCache) GetUserTaskCounts(ctx context.Context, userId string) (int, int, error) {
	key := buildUserCountsKey(userId)

	vals, err := redisCache.client.HMGet(ctx, key, "tasks", "completed").Result()
	if err != nil {
		return 0, 0, err
	}
	if vals[0] == nil {
		return -1, -1, nil // Not found
	}

	tasks := parseCount(vals[0])
	completed := parseCount(vals[1])
	return tasks, completed, nil
}

func (redisCache *RedisStudyCache) InvalidateUserTaskCounts(ctx context.Context, userId string) error {
	return redisCache.client.Del(ctx, buildUserCountsKey(userId)).Err()
}

func parseCount(v interface{}) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
