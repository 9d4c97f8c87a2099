package cache

import "context"

// ResolvedSlug is a cached public-URL resolution: the owner and topic a
// username/topic-name pair resolved to.
type ResolvedSlug struct {
	OwnerId string
	TopicId string
}

type StudyCache interface {
	Publish(ctx context.Context, channel string, message []byte) error
	Subscribe(ctx context.Context, channel string, handler func(message []byte)) error

	SetResolvedSlug(ctx context.Context, displayName string, topicName string, resolved ResolvedSlug) error
	GetResolvedSlug(ctx context.Context, displayName string, topicName string) (ResolvedSlug, bool, error)
	InvalidateSlugs(ctx context.Context, displayName string) error

	SeedUserTaskCounts(ctx context.Context, userId string, taskCount int, completedCount int) error
	IncrementUserTaskCounts(ctx context.Context, userId string, taskDelta int, completedDelta int) error
	GetUserTaskCounts(ctx context.Context, userId string) (int, int, error)
	InvalidateUserTaskCounts(ctx context.Context, userId string) error
}
