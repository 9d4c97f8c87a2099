package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"studyhub/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUser(ctx context.Context, provider string, providerId string) (models.User, error) {
	args := m.Called(ctx, provider, providerId)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUserById(ctx context.Context, userId string) (models.User, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) FindUsersByDisplayName(ctx context.Context, displayName string) ([]models.User, error) {
	args := m.Called(ctx, displayName)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStore) DeleteUser(ctx context.Context, provider string, providerId string) error {
	args := m.Called(ctx, provider, providerId)
	return args.Error(0)
}

func (m *MockStore) IncrementUserTaskCounts(ctx context.Context, provider string, providerId string, taskDelta int, completedDelta int) error {
	args := m.Called(ctx, provider, providerId, taskDelta, completedDelta)
	return args.Error(0)
}

func (m *MockStore) CreateTopic(ctx context.Context, topic models.Topic) (models.Topic, error) {
	args := m.Called(ctx, topic)
	return args.Get(0).(models.Topic), args.Error(1)
}

func (m *MockStore) GetTopic(ctx context.Context, ownerId string, topicId string) (models.Topic, error) {
	args := m.Called(ctx, ownerId, topicId)
	return args.Get(0).(models.Topic), args.Error(1)
}

func (m *MockStore) ListTopics(ctx context.Context, ownerId string) ([]models.Topic, error) {
	args := m.Called(ctx, ownerId)
	return args.Get(0).([]models.Topic), args.Error(1)
}

func (m *MockStore) UpdateTopic(ctx context.Context, topic models.Topic, fields []string) (models.Topic, error) {
	args := m.Called(ctx, topic, fields)
	return args.Get(0).(models.Topic), args.Error(1)
}

func (m *MockStore) SetTopicPublic(ctx context.Context, ownerId string, topicId string, public bool, updated int64) error {
	args := m.Called(ctx, ownerId, topicId, public, updated)
	return args.Error(0)
}

func (m *MockStore) DeleteTopic(ctx context.Context, ownerId string, topicId string) error {
	args := m.Called(ctx, ownerId, topicId)
	return args.Error(0)
}

func (m *MockStore) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockStore) GetTask(ctx context.Context, ownerId string, taskId string) (models.Task, error) {
	args := m.Called(ctx, ownerId, taskId)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockStore) ListTasks(ctx context.Context, ownerId string) ([]models.Task, error) {
	args := m.Called(ctx, ownerId)
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockStore) UpdateTask(ctx context.Context, task models.Task, fields []string) (models.Task, error) {
	args := m.Called(ctx, task, fields)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockStore) SetTaskCompleted(ctx context.Context, ownerId string, taskId string, completed bool, updated int64) error {
	args := m.Called(ctx, ownerId, taskId, completed, updated)
	return args.Error(0)
}

func (m *MockStore) DeleteTask(ctx context.Context, ownerId string, taskId string) error {
	args := m.Called(ctx, ownerId, taskId)
	return args.Error(0)
}

func (m *MockStore) CreateReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, error) {
	args := m.Called(ctx, reminder)
	return args.Get(0).(models.Reminder), args.Error(1)
}

func (m *MockStore) ListReminders(ctx context.Context, ownerId string) ([]models.Reminder, error) {
	args := m.Called(ctx, ownerId)
	return args.Get(0).([]models.Reminder), args.Error(1)
}

func (m *MockStore) SetReminderCompleted(ctx context.Context, ownerId string, reminderId string, completed bool) error {
	args := m.Called(ctx, ownerId, reminderId, completed)
	return args.Error(0)
}

func (m *MockStore) DeleteReminder(ctx context.Context, ownerId string, reminderId string) error {
	args := m.Called(ctx, ownerId, reminderId)
	return args.Error(0)
}

func (m *MockStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) ListNotes(ctx context.Context, ownerId string) ([]models.Note, error) {
	args := m.Called(ctx, ownerId)
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockStore) UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error) {
	args := m.Called(ctx, note, fields)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) DeleteNote(ctx context.Context, ownerId string, noteId string) error {
	args := m.Called(ctx, ownerId, noteId)
	return args.Error(0)
}

func (m *MockStore) PurgeOwnerItems(ctx context.Context, ownerId string) error {
	args := m.Called(ctx, ownerId)
	return args.Error(0)
}
