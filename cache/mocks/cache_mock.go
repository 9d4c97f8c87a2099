package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"studyhub/cache"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Publish(ctx context.Context, channel string, message []byte) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}

func (m *MockCache) SetResolvedSlug(ctx context.Context, displayName string, topicName string, resolved cache.ResolvedSlug) error {
	args := m.Called(ctx, displayName, topicName, resolved)
	return args.Error(0)
}

func (m *MockCache) GetResolvedSlug(ctx context.Context, displayName string, topicName string) (cache.ResolvedSlug, bool, error) {
	args := m.Called(ctx, displayName, topicName)
	return args.Get(0).(cache.ResolvedSlug), args.Bool(1), args.Error(2)
}

func (m *MockCache) InvalidateSlugs(ctx context.Context, displayName string) error {
	args := m.Called(ctx, displayName)
	return args.Error(0)
}

func (m *MockCache) SeedUserTaskCounts(ctx context.Context, userId string, taskCount int, completedCount int) error {
	args := m.Called(ctx, userId, taskCount, completedCount)
	return args.Error(0)
}

func (m *MockCache) IncrementUserTaskCounts(ctx context.Context, userId string, taskDelta int, completedDelta int) error {
	args := m.Called(ctx, userId, taskDelta, completedDelta)
	return args.Error(0)
}

func (m *MockCache) GetUserTaskCounts(ctx context.Context, userId string) (int, int, error) {
	args := m.Called(ctx, userId)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockCache) InvalidateUserTaskCounts(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}
