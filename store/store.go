package store

import (
	"context"
	"errors"

	"studyhub/models"
)

type StudyStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, provider string, providerId string) (models.User, error)
	GetUserById(ctx context.Context, userId string) (models.User, error)
	FindUsersByDisplayName(ctx context.Context, displayName string) ([]models.User, error)
	DeleteUser(ctx context.Context, provider string, providerId string) error
	IncrementUserTaskCounts(ctx context.Context, provider string, providerId string, taskDelta int, completedDelta int) error

	CreateTopic(ctx context.Context, topic models.Topic) (models.Topic, error)
	GetTopic(ctx context.Context, ownerId string, topicId string) (models.Topic, error)
	ListTopics(ctx context.Context, ownerId string) ([]models.Topic, error)
	UpdateTopic(ctx context.Context, topic models.Topic, fields []string) (models.Topic, error)
	SetTopicPublic(ctx context.Context, ownerId string, topicId string, public bool, updated int64) error
	DeleteTopic(ctx context.Context, ownerId string, topicId string) error

	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	GetTask(ctx context.Context, ownerId string, taskId string) (models.Task, error)
	ListTasks(ctx context.Context, ownerId string) ([]models.Task, error)
	UpdateTask(ctx context.Context, task models.Task, fields []string) (models.Task, error)
	SetTaskCompleted(ctx context.Context, ownerId string, taskId string, completed bool, updated int64) error
	DeleteTask(ctx context.Context, ownerId string, taskId string) error

	CreateReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, error)
	ListReminders(ctx context.Context, ownerId string) ([]models.Reminder, error)
	SetReminderCompleted(ctx context.Context, ownerId string, reminderId string, completed bool) error
	DeleteReminder(ctx context.Context, ownerId string, reminderId string) error

	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	ListNotes(ctx context.Context, ownerId string) ([]models.Note, error)
	UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error)
	DeleteNote(ctx context.Context, ownerId string, noteId string) error

	PurgeOwnerItems(ctx context.Context, ownerId string) error
}

// Custom error types for clarity
var (
	ErrItemNotFound    = errors.New("item does not exist")
	ErrConditionFailed = errors.New("condition not met")
)
