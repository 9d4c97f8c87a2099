package service_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"studyhub/cache"
	"studyhub/models"
	"studyhub/service"
)

func publicFixture() (models.User, models.Topic) {
	owner := models.User{
		Id:          "owner1",
		DisplayName: "Ada Lovelace",
		Provider:    "google",
		ProviderId:  "g1",
		Email:       "ada@example.com",
	}
	topic := models.Topic{
		Id:      "topic1",
		Name:    "Analytical Engines",
		OwnerId: owner.Id,
		Public:  true,
	}
	return owner, topic
}

func TestResolvePublicTopic_CacheMiss(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()

	mockCache.On("GetResolvedSlug", ctx, owner.DisplayName, topic.Name).
		Return(cache.ResolvedSlug{}, false, nil)
	mockStore.On("FindUsersByDisplayName", ctx, owner.DisplayName).
		Return([]models.User{owner}, nil)
	mockStore.On("ListTopics", ctx, owner.Id).Return([]models.Topic{topic}, nil)
	mockCache.On("SetResolvedSlug", ctx, owner.DisplayName, topic.Name,
		cache.ResolvedSlug{OwnerId: owner.Id, TopicId: topic.Id}).Return(nil)
	mockStore.On("ListTasks", ctx, owner.Id).Return([]models.Task{
		{Id: "t1", OwnerId: owner.Id, TopicId: topic.Id, Completed: true},
		{Id: "t2", OwnerId: owner.Id, TopicId: topic.Id},
	}, nil)
	mockStore.On("ListReminders", ctx, owner.Id).Return([]models.Reminder{}, nil)

	view, err := svc.ResolvePublicTopic(ctx, owner.DisplayName, topic.Name)
	assert.NoError(t, err)
	assert.Equal(t, topic.Id, view.Topic.Id)
	assert.Len(t, view.Tasks, 2)
	assert.Equal(t, 50, view.Completion)

	// The owner profile is stripped down for the public page
	assert.Equal(t, owner.DisplayName, view.Owner.DisplayName)
	assert.Empty(t, view.Owner.Email)
	assert.Empty(t, view.Owner.Provider)
}

func TestResolvePublicTopic_UnknownUserSkipsTopicLookup(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()

	mockCache.On("GetResolvedSlug", ctx, "Nobody", "Whatever").
		Return(cache.ResolvedSlug{}, false, nil)
	mockStore.On("FindUsersByDisplayName", ctx, "Nobody").Return([]models.User{}, nil)

	_, err := svc.ResolvePublicTopic(ctx, "Nobody", "Whatever")
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Unknown user short-circuits; the topic query never runs
	mockStore.AssertNotCalled(t, "ListTopics", mock.Anything, mock.Anything)
}

func TestResolvePublicTopic_CaseSensitiveMatch(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()

	mockCache.On("GetResolvedSlug", ctx, owner.DisplayName, "analytical engines").
		Return(cache.ResolvedSlug{}, false, nil)
	mockStore.On("FindUsersByDisplayName", ctx, owner.DisplayName).
		Return([]models.User{owner}, nil)
	mockStore.On("ListTopics", ctx, owner.Id).Return([]models.Topic{topic}, nil)

	_, err := svc.ResolvePublicTopic(ctx, owner.DisplayName, "analytical engines")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestResolvePublicTopic_PrivateTopicNotFound(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()
	topic.Public = false

	mockCache.On("GetResolvedSlug", ctx, owner.DisplayName, topic.Name).
		Return(cache.ResolvedSlug{}, false, nil)
	mockStore.On("FindUsersByDisplayName", ctx, owner.DisplayName).
		Return([]models.User{owner}, nil)
	mockStore.On("ListTopics", ctx, owner.Id).Return([]models.Topic{topic}, nil)

	// A private topic is indistinguishable from a missing one
	_, err := svc.ResolvePublicTopic(ctx, owner.DisplayName, topic.Name)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestResolvePublicTopic_DisplayNameCollisionFirstWins(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()
	double := models.User{Id: "owner2", DisplayName: owner.DisplayName}

	mockCache.On("GetResolvedSlug", ctx, owner.DisplayName, topic.Name).
		Return(cache.ResolvedSlug{}, false, nil)
	mockStore.On("FindUsersByDisplayName", ctx, owner.DisplayName).
		Return([]models.User{owner, double}, nil)
	mockStore.On("ListTopics", ctx, owner.Id).Return([]models.Topic{topic}, nil)
	mockCache.On("SetResolvedSlug", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockStore.On("ListTasks", ctx, owner.Id).Return([]models.Task{}, nil)
	mockStore.On("ListReminders", ctx, owner.Id).Return([]models.Reminder{}, nil)

	view, err := svc.ResolvePublicTopic(ctx, owner.DisplayName, topic.Name)
	assert.NoError(t, err)
	assert.Equal(t, owner.Id, view.Owner.Id)
	mockStore.AssertNotCalled(t, "ListTopics", ctx, double.Id)
}

func TestResolvePublicTopic_CacheHit(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()

	mockCache.On("GetResolvedSlug", ctx, owner.DisplayName, topic.Name).
		Return(cache.ResolvedSlug{OwnerId: owner.Id, TopicId: topic.Id}, true, nil)
	mockStore.On("GetTopic", ctx, owner.Id, topic.Id).Return(topic, nil)
	mockStore.On("GetUserById", ctx, owner.Id).Return(owner, nil)
	mockStore.On("ListTasks", ctx, owner.Id).Return([]models.Task{}, nil)
	mockStore.On("ListReminders", ctx, owner.Id).Return([]models.Reminder{}, nil)

	view, err := svc.ResolvePublicTopic(ctx, owner.DisplayName, topic.Name)
	assert.NoError(t, err)
	assert.Equal(t, topic.Id, view.Topic.Id)

	// Served from cache; no display-name scan happened
	mockStore.AssertNotCalled(t, "FindUsersByDisplayName", mock.Anything, mock.Anything)
}

func TestResolvePublicTopic_StaleCacheFallsBackToResolution(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()

	// Cache points at a topic that has since been renamed
	renamed := topic
	renamed.Name = "Difference Engines"

	mockCache.On("GetResolvedSlug", ctx, owner.DisplayName, topic.Name).
		Return(cache.ResolvedSlug{OwnerId: owner.Id, TopicId: topic.Id}, true, nil)
	mockStore.On("GetTopic", ctx, owner.Id, topic.Id).Return(renamed, nil)

	// Fresh resolution finds nothing under the old name
	mockStore.On("FindUsersByDisplayName", ctx, owner.DisplayName).
		Return([]models.User{owner}, nil)
	mockStore.On("ListTopics", ctx, owner.Id).Return([]models.Topic{renamed}, nil)

	_, err := svc.ResolvePublicTopic(ctx, owner.DisplayName, topic.Name)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

// Names with spaces and non-ASCII characters survive the trip through a URL
// path segment and resolve the same as their originals.
func TestResolvePublicTopic_EncodedNamesRoundTrip(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()

	owner := models.User{Id: "owner1", DisplayName: "José García"}
	topic := models.Topic{Id: "topic1", Name: "Матан 101", OwnerId: owner.Id, Public: true}

	// Simulate the URL round trip the frontend performs
	escapedUser := url.PathEscape(owner.DisplayName)
	escapedTopic := url.PathEscape(topic.Name)
	decodedUser, err := url.PathUnescape(escapedUser)
	assert.NoError(t, err)
	decodedTopic, err := url.PathUnescape(escapedTopic)
	assert.NoError(t, err)
	assert.Equal(t, owner.DisplayName, decodedUser)
	assert.Equal(t, topic.Name, decodedTopic)

	mockCache.On("GetResolvedSlug", ctx, owner.DisplayName, topic.Name).
		Return(cache.ResolvedSlug{}, false, nil)
	mockStore.On("FindUsersByDisplayName", ctx, owner.DisplayName).
		Return([]models.User{owner}, nil)
	mockStore.On("ListTopics", ctx, owner.Id).Return([]models.Topic{topic}, nil)
	mockCache.On("SetResolvedSlug", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockStore.On("ListTasks", ctx, owner.Id).Return([]models.Task{}, nil)
	mockStore.On("ListReminders", ctx, owner.Id).Return([]models.Reminder{}, nil)

	view, err := svc.ResolvePublicTopic(ctx, decodedUser, decodedTopic)
	assert.NoError(t, err)
	assert.Equal(t, topic.Id, view.Topic.Id)
}

// The full sharing sequence: the URL of a private topic resolves to nothing,
// the owner toggles it public (dropping the cached slugs for their name), and
// the same URL then resolves to the topic with its owner profile and lists.
func TestResolvePublicTopic_ResolvesAfterSharing(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()
	topic.Public = false
	allowPublish(mockCache)

	mockCache.On("GetResolvedSlug", ctx, owner.DisplayName, topic.Name).
		Return(cache.ResolvedSlug{}, false, nil)
	mockStore.On("FindUsersByDisplayName", ctx, owner.DisplayName).
		Return([]models.User{owner}, nil)
	mockStore.On("ListTopics", ctx, owner.Id).Return([]models.Topic{topic}, nil).Once()

	_, err := svc.ResolvePublicTopic(ctx, owner.DisplayName, topic.Name)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Owner shares the topic
	mockStore.On("SetTopicPublic", ctx, owner.Id, topic.Id, true, mock.Anything).Return(nil)
	mockCache.On("InvalidateSlugs", ctx, owner.DisplayName).Return(nil)
	assert.NoError(t, svc.SetTopicPublic(ctx, owner, topic.Id, true))
	mockCache.AssertCalled(t, "InvalidateSlugs", ctx, owner.DisplayName)

	shared := topic
	shared.Public = true
	mockStore.On("ListTopics", ctx, owner.Id).Return([]models.Topic{shared}, nil).Once()
	mockCache.On("SetResolvedSlug", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockStore.On("ListTasks", ctx, owner.Id).Return([]models.Task{
		{Id: "t1", OwnerId: owner.Id, TopicId: topic.Id, Completed: true},
		{Id: "t2", OwnerId: owner.Id, TopicId: topic.Id},
		{Id: "t3", OwnerId: owner.Id, TopicId: topic.Id},
	}, nil)
	mockStore.On("ListReminders", ctx, owner.Id).Return([]models.Reminder{
		{Id: "r1", OwnerId: owner.Id, TopicId: topic.Id, Date: 1},
	}, nil)

	view, err := svc.ResolvePublicTopic(ctx, owner.DisplayName, topic.Name)
	assert.NoError(t, err)
	assert.Equal(t, topic.Id, view.Topic.Id)
	assert.Equal(t, owner.DisplayName, view.Owner.DisplayName)
	assert.Len(t, view.Tasks, 3)
	assert.Len(t, view.Reminders, 1)
	assert.Equal(t, 33, view.Completion)
}

func TestGetPublicTopic(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()

	mockStore.On("GetTopic", ctx, owner.Id, topic.Id).Return(topic, nil)

	got, err := svc.GetPublicTopic(ctx, owner.Id, topic.Id)
	assert.NoError(t, err)
	assert.Equal(t, topic.Id, got.Id)
}

func TestGetPublicTopic_Private(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()
	owner, topic := publicFixture()
	topic.Public = false

	mockStore.On("GetTopic", ctx, owner.Id, topic.Id).Return(topic, nil)

	_, err := svc.GetPublicTopic(ctx, owner.Id, topic.Id)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
