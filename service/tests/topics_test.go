package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"studyhub/models"
	"studyhub/service"
	"studyhub/store"
)

func TestCreateTopic_DefaultColor(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()
	allowPublish(mockCache)

	mockStore.On("CreateTopic", ctx, mock.MatchedBy(func(topic models.Topic) bool {
		return topic.Name == "Calculus" &&
			topic.OwnerId == user.Id &&
			topic.Color == "#3B82F6"
	})).Return(models.Topic{Id: "top1", Name: "Calculus", OwnerId: user.Id}, nil)

	created, err := svc.CreateTopic(ctx, user, service.TopicInput{Name: "Calculus"})
	assert.NoError(t, err)
	assert.Equal(t, "top1", created.Id)
}

func TestCreateTopic_InvalidColor(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, err := svc.CreateTopic(context.Background(), testUser(), service.TopicInput{
		Name:  "Calculus",
		Color: "blue",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCreateTopic_NameWithSlash(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, err := svc.CreateTopic(context.Background(), testUser(), service.TopicInput{
		Name: "Calculus/Limits",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestListTopicsWithProgress(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	topics := []models.Topic{
		{Id: "top1", OwnerId: "user1", Updated: 200},
		{Id: "top2", OwnerId: "user1", Updated: 100},
	}
	tasks := []models.Task{
		{Id: "t1", OwnerId: "user1", TopicId: "top1", Completed: true},
		{Id: "t2", OwnerId: "user1", TopicId: "top1"},
		{Id: "t3", OwnerId: "user1", TopicId: "top1", Completed: true},
		{Id: "t4", OwnerId: "user1", TopicId: "top1", Completed: true},
	}
	mockStore.On("ListTopics", ctx, "user1").Return(topics, nil)
	mockStore.On("ListTasks", ctx, "user1").Return(tasks, nil)

	out, err := svc.ListTopicsWithProgress(ctx, "user1")
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "top1", out[0].Id)
	assert.Equal(t, 75, out[0].Completion)
	// A topic without tasks reports 0
	assert.Equal(t, 0, out[1].Completion)
}

func TestUpdateTopic_RenameInvalidatesSlugs(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()
	allowPublish(mockCache)

	name := "Linear Algebra"
	mockStore.On("UpdateTopic", ctx, mock.Anything, []string{"Name"}).
		Return(models.Topic{Id: "top1", Name: name, OwnerId: user.Id}, nil)
	mockCache.On("InvalidateSlugs", ctx, user.DisplayName).Return(nil)

	_, err := svc.UpdateTopic(ctx, user, "top1", service.TopicUpdate{Name: &name})
	assert.NoError(t, err)
	mockCache.AssertCalled(t, "InvalidateSlugs", ctx, user.DisplayName)
}

func TestUpdateTopic_ColorOnlyKeepsSlugs(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()
	allowPublish(mockCache)

	color := "#FF0000"
	mockStore.On("UpdateTopic", ctx, mock.Anything, []string{"Color"}).
		Return(models.Topic{Id: "top1", OwnerId: user.Id, Color: color}, nil)

	_, err := svc.UpdateTopic(ctx, user, "top1", service.TopicUpdate{Color: &color})
	assert.NoError(t, err)
	mockCache.AssertNotCalled(t, "InvalidateSlugs", mock.Anything, mock.Anything)
}

func TestSetTopicPublic(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()
	allowPublish(mockCache)

	mockStore.On("SetTopicPublic", ctx, user.Id, "top1", true, mock.AnythingOfType("int64")).Return(nil)
	mockCache.On("InvalidateSlugs", ctx, user.DisplayName).Return(nil)

	err := svc.SetTopicPublic(ctx, user, "top1", true)
	assert.NoError(t, err)
}

func TestSetTopicPublic_NotFound(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()

	mockStore.On("SetTopicPublic", ctx, user.Id, "missing", true, mock.AnythingOfType("int64")).
		Return(store.ErrItemNotFound)

	err := svc.SetTopicPublic(ctx, user, "missing", true)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteTopic_DoesNotCascade(t *testing.T) {
	svc, mockStore, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()
	allowPublish(mockCache)

	mockStore.On("DeleteTopic", ctx, user.Id, "top1").Return(nil)
	mockCache.On("InvalidateSlugs", ctx, user.DisplayName).Return(nil)

	err := svc.DeleteTopic(ctx, user, "top1")
	assert.NoError(t, err)

	// Tasks, reminders and notes keep their topicId and live on as orphans
	mockStore.AssertNotCalled(t, "DeleteTask", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "DeleteReminder", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "DeleteNote", mock.Anything, mock.Anything, mock.Anything)
}
