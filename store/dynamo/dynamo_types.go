package dynamo

import (
	"strings"

	"studyhub/models"
)

const (
	skProfile        = "PROFILE"
	skTopicPrefix    = "TOPIC#"
	skTaskPrefix     = "TASK#"
	skReminderPrefix = "REM#"
	skNotePrefix     = "NOTE#"
)

func userPK(provider, providerId string) string {
	return "USER#" + provider + "#" + providerId
}

func ownerPK(ownerId string) string {
	return "OWNER#" + ownerId
}

type dynamoUser struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	Id             string `dynamodbav:"Id"`
	Email          string `dynamodbav:"Email"`
	DisplayName    string `dynamodbav:"DisplayName"`
	AvatarURL      string `dynamodbav:"AvatarURL"`
	Provider       string `dynamodbav:"Provider"`
	ProviderId     string `dynamodbav:"ProviderId"`
	PasswordHash   string `dynamodbav:"PasswordHash"`
	Created        int64  `dynamodbav:"Created"`
	TaskCount      int    `dynamodbav:"TaskCount"`
	CompletedCount int    `dynamodbav:"CompletedCount"`
}

// Map domain User -> Dynamo
func userToDynamo(u models.User) dynamoUser {
	return dynamoUser{
		PK:             userPK(u.Provider, u.ProviderId),
		SK:             skProfile,
		Id:             u.Id,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		AvatarURL:      u.AvatarURL,
		Provider:       u.Provider,
		ProviderId:     u.ProviderId,
		PasswordHash:   u.PasswordHash,
		Created:        u.Created,
		TaskCount:      u.TaskCount,
		CompletedCount: u.CompletedCount,
	}
}

// Map Dynamo -> domain User
func userFromDynamo(du dynamoUser) models.User {
	return models.User{
		Id:             du.Id,
		Email:          du.Email,
		DisplayName:    du.DisplayName,
		AvatarURL:      du.AvatarURL,
		Provider:       du.Provider,
		ProviderId:     du.ProviderId,
		PasswordHash:   du.PasswordHash,
		Created:        du.Created,
		TaskCount:      du.TaskCount,
		CompletedCount: du.CompletedCount,
	}
}

type dynamoTopic struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description"`
	Color       string `dynamodbav:"Color"`
	Icon        string `dynamodbav:"Icon"`
	OwnerId     string `dynamodbav:"OwnerId"`
	FolderPath  string `dynamodbav:"FolderPath"`
	Public      bool   `dynamodbav:"Public"`
	Created     int64  `dynamodbav:"Created"`
	Updated     int64  `dynamodbav:"Updated"`
}

func topicToDynamo(t models.Topic) dynamoTopic {
	return dynamoTopic{
		PK:          ownerPK(t.OwnerId),
		SK:          skTopicPrefix + t.Id,
		Name:        t.Name,
		Description: t.Description,
		Color:       t.Color,
		Icon:        t.Icon,
		OwnerId:     t.OwnerId,
		FolderPath:  t.FolderPath,
		Public:      t.Public,
		Created:     t.Created,
		Updated:     t.Updated,
	}
}

func topicFromDynamo(dt dynamoTopic) models.Topic {
	return models.Topic{
		Id:          strings.TrimPrefix(dt.SK, skTopicPrefix),
		Name:        dt.Name,
		Description: dt.Description,
		Color:       dt.Color,
		Icon:        dt.Icon,
		OwnerId:     dt.OwnerId,
		FolderPath:  dt.FolderPath,
		Public:      dt.Public,
		Created:     dt.Created,
		Updated:     dt.Updated,
	}
}

type dynamoTask struct {
	PK           string   `dynamodbav:"PK"`
	SK           string   `dynamodbav:"SK"`
	Title        string   `dynamodbav:"Title"`
	Description  string   `dynamodbav:"Description"`
	Completed    bool     `dynamodbav:"Completed"`
	Priority     string   `dynamodbav:"Priority"`
	DueDate      int64    `dynamodbav:"DueDate"`
	ReminderDate int64    `dynamodbav:"ReminderDate"`
	TopicId      string   `dynamodbav:"TopicId"`
	OwnerId      string   `dynamodbav:"OwnerId"`
	Tags         []string `dynamodbav:"Tags"`
	Created      int64    `dynamodbav:"Created"`
	Updated      int64    `dynamodbav:"Updated"`
}

func taskToDynamo(t models.Task) dynamoTask {
	return dynamoTask{
		PK:           ownerPK(t.OwnerId),
		SK:           skTaskPrefix + t.Id,
		Title:        t.Title,
		Description:  t.Description,
		Completed:    t.Completed,
		Priority:     string(t.Priority),
		DueDate:      t.DueDate,
		ReminderDate: t.ReminderDate,
		TopicId:      t.TopicId,
		OwnerId:      t.OwnerId,
		Tags:         t.Tags,
		Created:      t.Created,
		Updated:      t.Updated,
	}
}

func taskFromDynamo(dt dynamoTask) models.Task {
	return models.Task{
		Id:           strings.TrimPrefix(dt.SK, skTaskPrefix),
		Title:        dt.Title,
		Description:  dt.Description,
		Completed:    dt.Completed,
		Priority:     models.Priority(dt.Priority),
		DueDate:      dt.DueDate,
		ReminderDate: dt.ReminderDate,
		TopicId:      dt.TopicId,
		OwnerId:      dt.OwnerId,
		Tags:         dt.Tags,
		Created:      dt.Created,
		Updated:      dt.Updated,
	}
}

type dynamoReminder struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	Title       string `dynamodbav:"Title"`
	Description string `dynamodbav:"Description"`
	Date        int64  `dynamodbav:"Date"`
	Type        string `dynamodbav:"Type"`
	TopicId     string `dynamodbav:"TopicId"`
	TaskId      string `dynamodbav:"TaskId"`
	OwnerId     string `dynamodbav:"OwnerId"`
	Completed   bool   `dynamodbav:"Completed"`
	Created     int64  `dynamodbav:"Created"`
}

func reminderToDynamo(r models.Reminder) dynamoReminder {
	return dynamoReminder{
		PK:          ownerPK(r.OwnerId),
		SK:          skReminderPrefix + r.Id,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Type:        string(r.Type),
		TopicId:     r.TopicId,
		TaskId:      r.TaskId,
		OwnerId:     r.OwnerId,
		Completed:   r.Completed,
		Created:     r.Created,
	}
}

func reminderFromDynamo(dr dynamoReminder) models.Reminder {
	return models.Reminder{
		Id:          strings.TrimPrefix(dr.SK, skReminderPrefix),
		Title:       dr.Title,
		Description: dr.Description,
		Date:        dr.Date,
		Type:        models.ReminderType(dr.Type),
		TopicId:     dr.TopicId,
		TaskId:      dr.TaskId,
		OwnerId:     dr.OwnerId,
		Completed:   dr.Completed,
		Created:     dr.Created,
	}
}

type dynamoNote struct {
	PK      string   `dynamodbav:"PK"`
	SK      string   `dynamodbav:"SK"`
	Title   string   `dynamodbav:"Title"`
	Content string   `dynamodbav:"Content"`
	TopicId string   `dynamodbav:"TopicId"`
	OwnerId string   `dynamodbav:"OwnerId"`
	Tags    []string `dynamodbav:"Tags"`
	Created int64    `dynamodbav:"Created"`
	Updated int64    `dynamodbav:"Updated"`
}

func noteToDynamo(n models.Note) dynamoNote {
	return dynamoNote{
		PK:      ownerPK(n.OwnerId),
		SK:      skNotePrefix + n.Id,
		Title:   n.Title,
		Content: n.Content,
		TopicId: n.TopicId,
		OwnerId: n.OwnerId,
		Tags:    n.Tags,
		Created: n.Created,
		Updated: n.Updated,
	}
}

func noteFromDynamo(dn dynamoNote) models.Note {
	return models.Note{
		Id:      strings.TrimPrefix(dn.SK, skNotePrefix),
		Title:   dn.Title,
		Content: dn.Content,
		TopicId: dn.TopicId,
		OwnerId: dn.OwnerId,
		Tags:    dn.Tags,
		Created: dn.Created,
		Updated: dn.Updated,
	}
}
