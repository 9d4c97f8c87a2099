package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gofrs/uuid/v5"

	"studyhub/models"
	"studyhub/store"
)

const (
	gsiUserId      = "GSI_UserId"
	gsiDisplayName = "GSI_DisplayName"
)

type DynamoStudyStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoStudyStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoStudyStore, error) {
	client, err := newDynamoDBClient(context.Background(), devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoStudyStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoStudyStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	userId, err := uuid.NewV4()
	if err != nil {
		return models.User{}, err
	}
	user.Id = userId.String()

	du := userToDynamo(user)
	du.Created = time.Now().UnixMilli()
	du, _, err = ensureItem(dynamoStore, ctx, du)
	if err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoStudyStore) GetUser(ctx context.Context, provider string, providerId string) (models.User, error) {
	du, err := getItem[dynamoUser](dynamoStore, ctx, userPK(provider, providerId), skProfile, false)
	if err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoStudyStore) GetUserById(ctx context.Context, userId string) (models.User, error) {
	dus, err := queryAllByGSI[dynamoUser](dynamoStore, ctx, gsiUserId, "Id", userId)
	if err != nil {
		return models.User{}, err
	}
	if len(dus) == 0 {
		return models.User{}, store.ErrItemNotFound
	}

	return userFromDynamo(dus[0]), nil
}

func (dynamoStore *DynamoStudyStore) FindUsersByDisplayName(ctx context.Context, displayName string) ([]models.User, error) {
	dus, err := queryAllByGSI[dynamoUser](dynamoStore, ctx, gsiDisplayName, "DisplayName", displayName)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(dus))
	for _, du := range dus {
		users = append(users, userFromDynamo(du))
	}

	return users, nil
}

func (dynamoStore *DynamoStudyStore) DeleteUser(ctx context.Context, provider string, providerId string) error {
	return deleteItem(dynamoStore, ctx, userPK(provider, providerId), skProfile)
}

func (dynamoStore *DynamoStudyStore) IncrementUserTaskCounts(ctx context.Context, provider string, providerId string, taskDelta int, completedDelta int) error {
	deltas := make(map[string]int, 2)
	if taskDelta != 0 {
		deltas["TaskCount"] = taskDelta
	}
	if completedDelta != 0 {
		deltas["CompletedCount"] = completedDelta
	}
	// Strict mode: only increment if user exists (prevents partial records after delete)
	return incrementCounters(dynamoStore, ctx, userPK(provider, providerId), skProfile, deltas)
}

func (dynamoStore *DynamoStudyStore) CreateTopic(ctx context.Context, topic models.Topic) (models.Topic, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.Topic{}, err
	}
	topic.Id = id.String()
	now := time.Now().UnixMilli()
	topic.Created = now
	topic.Updated = now

	if err := putItem(dynamoStore, ctx, topicToDynamo(topic)); err != nil {
		return models.Topic{}, err
	}

	return topic, nil
}

func (dynamoStore *DynamoStudyStore) GetTopic(ctx context.Context, ownerId string, topicId string) (models.Topic, error) {
	dt, err := getItem[dynamoTopic](dynamoStore, ctx, ownerPK(ownerId), skTopicPrefix+topicId, false)
	if err != nil {
		return models.Topic{}, err
	}

	return topicFromDynamo(dt), nil
}

func (dynamoStore *DynamoStudyStore) ListTopics(ctx context.Context, ownerId string) ([]models.Topic, error) {
	dts, err := queryAllByPKPrefix[dynamoTopic](dynamoStore, ctx, ownerPK(ownerId), skTopicPrefix)
	if err != nil {
		return nil, err
	}

	topics := make([]models.Topic, 0, len(dts))
	for _, dt := range dts {
		topics = append(topics, topicFromDynamo(dt))
	}

	return topics, nil
}

func (dynamoStore *DynamoStudyStore) UpdateTopic(ctx context.Context, topic models.Topic, fields []string) (models.Topic, error) {
	dt := topicToDynamo(topic)
	dt, err := updateItem(dynamoStore, ctx, dt, append(fields, "Updated"))
	if err != nil {
		return models.Topic{}, err
	}

	return topicFromDynamo(dt), nil
}

func (dynamoStore *DynamoStudyStore) SetTopicPublic(ctx context.Context, ownerId string, topicId string, public bool, updated int64) error {
	dt := dynamoTopic{
		PK:      ownerPK(ownerId),
		SK:      skTopicPrefix + topicId,
		Public:  public,
		Updated: updated,
	}
	_, err := updateItem(dynamoStore, ctx, dt, []string{"Public", "Updated"})
	return err
}

func (dynamoStore *DynamoStudyStore) DeleteTopic(ctx context.Context, ownerId string, topicId string) error {
	// Hard delete of the topic document only. Tasks, reminders and notes that
	// point at it stay behind as orphans.
	return deleteItem(dynamoStore, ctx, ownerPK(ownerId), skTopicPrefix+topicId)
}

func (dynamoStore *DynamoStudyStore) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.Task{}, err
	}
	task.Id = id.String()
	now := time.Now().UnixMilli()
	task.Created = now
	task.Updated = now

	if err := putItem(dynamoStore, ctx, taskToDynamo(task)); err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (dynamoStore *DynamoStudyStore) GetTask(ctx context.Context, ownerId string, taskId string) (models.Task, error) {
	dt, err := getItem[dynamoTask](dynamoStore, ctx, ownerPK(ownerId), skTaskPrefix+taskId, false)
	if err != nil {
		return models.Task{}, err
	}

	return taskFromDynamo(dt), nil
}

func (dynamoStore *DynamoStudyStore) ListTasks(ctx context.Context, ownerId string) ([]models.Task, error) {
	dts, err := queryAllByPKPrefix[dynamoTask](dynamoStore, ctx, ownerPK(ownerId), skTaskPrefix)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(dts))
	for _, dt := range dts {
		tasks = append(tasks, taskFromDynamo(dt))
	}

	return tasks, nil
}

func (dynamoStore *DynamoStudyStore) UpdateTask(ctx context.Context, task models.Task, fields []string) (models.Task, error) {
	dt := taskToDynamo(task)
	dt, err := updateItem(dynamoStore, ctx, dt, append(fields, "Updated"))
	if err != nil {
		return models.Task{}, err
	}

	return taskFromDynamo(dt), nil
}

func (dynamoStore *DynamoStudyStore) SetTaskCompleted(ctx context.Context, ownerId string, taskId string, completed bool, updated int64) error {
	dt := dynamoTask{
		PK:        ownerPK(ownerId),
		SK:        skTaskPrefix + taskId,
		Completed: completed,
		Updated:   updated,
	}
	_, err := updateItem(dynamoStore, ctx, dt, []string{"Completed", "Updated"})
	return err
}

func (dynamoStore *DynamoStudyStore) DeleteTask(ctx context.Context, ownerId string, taskId string) error {
	return deleteItem(dynamoStore, ctx, ownerPK(ownerId), skTaskPrefix+taskId)
}

func (dynamoStore *DynamoStudyStore) CreateReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.Reminder{}, err
	}
	reminder.Id = id.String()
	reminder.Created = time.Now().UnixMilli()

	if err := putItem(dynamoStore, ctx, reminderToDynamo(reminder)); err != nil {
		return models.Reminder{}, err
	}

	return reminder, nil
}

func (dynamoStore *DynamoStudyStore) ListReminders(ctx context.Context, ownerId string) ([]models.Reminder, error) {
	drs, err := queryAllByPKPrefix[dynamoReminder](dynamoStore, ctx, ownerPK(ownerId), skReminderPrefix)
	if err != nil {
		return nil, err
	}

	reminders := make([]models.Reminder, 0, len(drs))
	for _, dr := range drs {
		reminders = append(reminders, reminderFromDynamo(dr))
	}

	return reminders, nil
}

func (dynamoStore *DynamoStudyStore) SetReminderCompleted(ctx context.Context, ownerId string, reminderId string, completed bool) error {
	dr := dynamoReminder{
		PK:        ownerPK(ownerId),
		SK:        skReminderPrefix + reminderId,
		Completed: completed,
	}
	_, err := updateItem(dynamoStore, ctx, dr, []string{"Completed"})
	return err
}

func (dynamoStore *DynamoStudyStore) DeleteReminder(ctx context.Context, ownerId string, reminderId string) error {
	return deleteItem(dynamoStore, ctx, ownerPK(ownerId), skReminderPrefix+reminderId)
}

func (dynamoStore *DynamoStudyStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.Note{}, err
	}
	note.Id = id.String()
	now := time.Now().UnixMilli()
	note.Created = now
	note.Updated = now

	if err := putItem(dynamoStore, ctx, noteToDynamo(note)); err != nil {
		return models.Note{}, err
	}

	return note, nil
}

func (dynamoStore *DynamoStudyStore) ListNotes(ctx context.Context, ownerId string) ([]models.Note, error) {
	dns, err := queryAllByPKPrefix[dynamoNote](dynamoStore, ctx, ownerPK(ownerId), skNotePrefix)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(dns))
	for _, dn := range dns {
		notes = append(notes, noteFromDynamo(dn))
	}

	return notes, nil
}

func (dynamoStore *DynamoStudyStore) UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error) {
	dn := noteToDynamo(note)
	dn, err := updateItem(dynamoStore, ctx, dn, append(fields, "Updated"))
	if err != nil {
		return models.Note{}, err
	}

	return noteFromDynamo(dn), nil
}

func (dynamoStore *DynamoStudyStore) DeleteNote(ctx context.Context, ownerId string, noteId string) error {
	return deleteItem(dynamoStore, ctx, ownerPK(ownerId), skNotePrefix+noteId)
}

func (dynamoStore *DynamoStudyStore) PurgeOwnerItems(ctx context.Context, ownerId string) error {
	return batchDeletePKThrottled(dynamoStore, ctx, ownerPK(ownerId), 50*time.Millisecond)
}
