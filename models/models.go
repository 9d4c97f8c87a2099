package models

type User struct {
	Id             string `json:"id"`
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	Provider       string `json:"provider"`
	ProviderId     string `json:"-"`
	PasswordHash   string `json:"-"`
	Created        int64  `json:"created"`
	TaskCount      int    `json:"taskCount"`
	CompletedCount int    `json:"completedCount"`
}

// PublicProfile strips everything a public topic page does not need.
func (u User) PublicProfile() User {
	return User{
		Id:          u.Id,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

type Topic struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon,omitempty"`
	OwnerId     string `json:"ownerId"`
	FolderPath  string `json:"folderPath,omitempty"`
	Public      bool   `json:"public"`
	Created     int64  `json:"created"`
	Updated     int64  `json:"updated"`
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Task struct {
	Id           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Completed    bool     `json:"completed"`
	Priority     Priority `json:"priority"`
	DueDate      int64    `json:"dueDate,omitempty"`
	ReminderDate int64    `json:"reminderDate,omitempty"`
	TopicId      string   `json:"topicId"`
	OwnerId      string   `json:"ownerId"`
	Tags         []string `json:"tags,omitempty"`
	Created      int64    `json:"created"`
	Updated      int64    `json:"updated"`
}

type ReminderType string

const (
	ReminderTask   ReminderType = "task"
	ReminderStudy  ReminderType = "study"
	ReminderReview ReminderType = "review"
)

type Reminder struct {
	Id          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Date        int64        `json:"date"`
	Type        ReminderType `json:"type"`
	TopicId     string       `json:"topicId"`
	TaskId      string       `json:"taskId,omitempty"`
	OwnerId     string       `json:"ownerId"`
	Completed   bool         `json:"completed"`
	Created     int64        `json:"created"`
}

type Note struct {
	Id      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	TopicId string   `json:"topicId"`
	OwnerId string   `json:"ownerId"`
	Tags    []string `json:"tags,omitempty"`
	Created int64    `json:"created"`
	Updated int64    `json:"updated"`
}
