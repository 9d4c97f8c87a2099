package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	cachemocks "studyhub/cache/mocks"
	"studyhub/models"
	mqmocks "studyhub/mq/mocks"
	"studyhub/service"
	"studyhub/store"
	storemocks "studyhub/store/mocks"
	"studyhub/worker"
)

// Helper to setup the service with mocks
func setupService(t *testing.T) (*service.Service, *storemocks.MockStore, *cachemocks.MockCache, *mqmocks.MockMQ, *worker.StatsBatcher) {
	mockStore := new(storemocks.MockStore)
	mockCache := new(cachemocks.MockCache)
	mockMQ := new(mqmocks.MockMQ)

	// A real batcher is used; tests verify updates are pushed to its channel
	statsBatcher := worker.NewStatsBatcher(mockStore, 1000)

	svc, err := service.NewService(
		mockStore,
		mockCache,
		mockMQ,
		statsBatcher,
		nil,
		[]byte("secret"),
	)
	assert.NoError(t, err)

	return svc, mockStore, mockCache, mockMQ, statsBatcher
}

// Helper that creates a channel and wraps a mock call to signal when it's called
func wrapMockWithSignal(call *mock.Call) chan struct{} {
	done := make(chan struct{})
	call.Run(func(args mock.Arguments) {
		close(done)
	})
	return done
}

// Mutations publish change events from a goroutine; tests that trigger them
// register a permissive Publish expectation so the async call is accounted for.
func allowPublish(mockCache *cachemocks.MockCache) {
	mockCache.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func testUser() models.User {
	return models.User{
		Id:          "user1",
		Provider:    "google",
		ProviderId:  "g123",
		DisplayName: "Ada Lovelace",
	}
}

func TestCreateTask_Success(t *testing.T) {
	svc, mockStore, mockCache, _, statsBatcher := setupService(t)
	ctx := context.Background()
	user := testUser()
	allowPublish(mockCache)

	mockStore.On("CreateTask", ctx, mock.MatchedBy(func(task models.Task) bool {
		return task.Title == "Read chapter 4" &&
			task.OwnerId == user.Id &&
			task.Priority == models.PriorityMedium &&
			!task.Completed
	})).Return(models.Task{Id: "t1", Title: "Read chapter 4", OwnerId: user.Id}, nil)
	mockCache.On("IncrementUserTaskCounts", ctx, user.Id, 1, 0).Return(nil)

	created, err := svc.CreateTask(ctx, user, service.TaskInput{Title: "Read chapter 4"})
	assert.NoError(t, err)
	assert.Equal(t, "t1", created.Id)

	// The durable counter update must land on the batcher
	select {
	case update := <-statsBatcher.UpdateCh:
		assert.Equal(t, user.Provider, update.UserProvider)
		assert.Equal(t, 1, update.TaskDelta)
		assert.Equal(t, 0, update.CompletedDelta)
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for stats update")
	}
}

func TestCreateTask_EmptyTitle(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, err := svc.CreateTask(context.Background(), testUser(), service.TaskInput{Title: "   "})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCreateTask_InvalidPriority(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, err := svc.CreateTask(context.Background(), testUser(), service.TaskInput{
		Title:    "Task",
		Priority: "urgent",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestListTasks_FiltersByTopic(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	rows := []models.Task{
		{Id: "t1", OwnerId: "user1", TopicId: "topicA", Created: 100},
		{Id: "t2", OwnerId: "user1", TopicId: "topicB", Created: 200},
		{Id: "t3", OwnerId: "user1", TopicId: "topicA", Created: 300},
	}
	mockStore.On("ListTasks", ctx, "user1").Return(rows, nil)

	tasks, err := svc.ListTasks(ctx, "user1", "topicA")
	assert.NoError(t, err)
	assert.Len(t, tasks, 2)
	// Newest first
	assert.Equal(t, "t3", tasks[0].Id)
	assert.Equal(t, "t1", tasks[1].Id)
}

func TestUpdateTask_NoFields(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, err := svc.UpdateTask(context.Background(), testUser(), "t1", service.TaskUpdate{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()

	title := "New title"
	mockStore.On("UpdateTask", ctx, mock.Anything, []string{"Title"}).
		Return(models.Task{}, store.ErrItemNotFound)

	_, err := svc.UpdateTask(ctx, user, "missing", service.TaskUpdate{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSetTaskCompleted_Success(t *testing.T) {
	svc, mockStore, mockCache, _, statsBatcher := setupService(t)
	ctx := context.Background()
	user := testUser()
	allowPublish(mockCache)

	mockStore.On("GetTask", ctx, user.Id, "t1").
		Return(models.Task{Id: "t1", OwnerId: user.Id, TopicId: "topicA", Completed: false}, nil)
	mockStore.On("SetTaskCompleted", ctx, user.Id, "t1", true, mock.AnythingOfType("int64")).Return(nil)
	mockCache.On("IncrementUserTaskCounts", ctx, user.Id, 0, 1).Return(nil)

	err := svc.SetTaskCompleted(ctx, user, "t1", true)
	assert.NoError(t, err)

	select {
	case update := <-statsBatcher.UpdateCh:
		assert.Equal(t, 0, update.TaskDelta)
		assert.Equal(t, 1, update.CompletedDelta)
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for stats update")
	}
}

func TestSetTaskCompleted_NoOpToggle(t *testing.T) {
	svc, mockStore, _, _, statsBatcher := setupService(t)
	ctx := context.Background()
	user := testUser()

	mockStore.On("GetTask", ctx, user.Id, "t1").
		Return(models.Task{Id: "t1", OwnerId: user.Id, Completed: true}, nil)

	// Completing an already-completed task must not write or count anything
	err := svc.SetTaskCompleted(ctx, user, "t1", true)
	assert.NoError(t, err)
	mockStore.AssertNotCalled(t, "SetTaskCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, statsBatcher.UpdateCh)
}

func TestSetTaskCompleted_NotFound(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()

	mockStore.On("GetTask", ctx, user.Id, "missing").
		Return(models.Task{}, store.ErrItemNotFound)

	err := svc.SetTaskCompleted(ctx, user, "missing", true)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteTask_CompletedAdjustsBothCounters(t *testing.T) {
	svc, mockStore, mockCache, _, statsBatcher := setupService(t)
	ctx := context.Background()
	user := testUser()
	allowPublish(mockCache)

	mockStore.On("GetTask", ctx, user.Id, "t1").
		Return(models.Task{Id: "t1", OwnerId: user.Id, Completed: true}, nil)
	mockStore.On("DeleteTask", ctx, user.Id, "t1").Return(nil)
	mockCache.On("IncrementUserTaskCounts", ctx, user.Id, -1, -1).Return(nil)

	err := svc.DeleteTask(ctx, user, "t1")
	assert.NoError(t, err)

	select {
	case update := <-statsBatcher.UpdateCh:
		assert.Equal(t, -1, update.TaskDelta)
		assert.Equal(t, -1, update.CompletedDelta)
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for stats update")
	}
}

func TestDeleteTask_StoreError(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()

	mockStore.On("GetTask", ctx, user.Id, "t1").
		Return(models.Task{Id: "t1", OwnerId: user.Id}, nil)
	mockStore.On("DeleteTask", ctx, user.Id, "t1").Return(errors.New("dynamo down"))

	err := svc.DeleteTask(ctx, user, "t1")
	assert.Error(t, err)
}

func TestUserTaskCounts_ServedFromCache(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()
	user.TaskCount = 2
	user.CompletedCount = 1

	// The cached counters are fresher than the batched profile values
	mockCache.On("GetUserTaskCounts", ctx, user.Id).Return(5, 3, nil)

	tasks, completed := svc.UserTaskCounts(ctx, user)
	assert.Equal(t, 5, tasks)
	assert.Equal(t, 3, completed)
}

func TestUserTaskCounts_CacheMissFallsBackToProfile(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()
	user.TaskCount = 7
	user.CompletedCount = 4

	mockCache.On("GetUserTaskCounts", ctx, user.Id).Return(-1, -1, nil)

	tasks, completed := svc.UserTaskCounts(ctx, user)
	assert.Equal(t, 7, tasks)
	assert.Equal(t, 4, completed)
}

func TestUserTaskCounts_CacheErrorFallsBackToProfile(t *testing.T) {
	svc, _, mockCache, _, _ := setupService(t)
	ctx := context.Background()
	user := testUser()
	user.TaskCount = 7
	user.CompletedCount = 4

	mockCache.On("GetUserTaskCounts", ctx, user.Id).Return(0, 0, errors.New("redis down"))

	tasks, completed := svc.UserTaskCounts(ctx, user)
	assert.Equal(t, 7, tasks)
	assert.Equal(t, 4, completed)
}
