package service

import (
	"context"
	"errors"
	"time"

	"studyhub/models"
	"studyhub/store"
)

type ReminderInput struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Date        int64               `json:"date"`
	Type        models.ReminderType `json:"type"`
	TopicId     string              `json:"topicId"`
	TaskId      string              `json:"taskId"`
}

func (s *Service) CreateReminder(ctx context.Context, owner models.User, in ReminderInput) (models.Reminder, error) {
	if err := ValidateTitle(in.Title); err != nil {
		return models.Reminder{}, err
	}
	if in.Type == "" {
		in.Type = models.ReminderStudy
	}
	if err := ValidateReminderType(in.Type); err != nil {
		return models.Reminder{}, err
	}

	reminder := models.Reminder{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Type:        in.Type,
		TopicId:     in.TopicId,
		TaskId:      in.TaskId,
		OwnerId:     owner.Id,
	}

	created, err := s.Store.CreateReminder(ctx, reminder)
	if err != nil {
		return models.Reminder{}, err
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionReminders,
		Action:     "created",
		Id:         created.Id,
		OwnerId:    owner.Id,
		TopicId:    created.TopicId,
	})

	return created, nil
}

// ReminderView is a reminder annotated with its overdue classification as of
// read time. The flag is never stored; every list computes it fresh.
type ReminderView struct {
	models.Reminder
	Overdue bool `json:"overdue"`
}

func (s *Service) ListReminders(ctx context.Context, ownerId string, topicId string) ([]ReminderView, error) {
	rows, err := s.Store.ListReminders(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	return BuildReminderViews(ProjectReminders(rows, ownerId, topicId), time.Now()), nil
}

func (s *Service) SetReminderCompleted(ctx context.Context, owner models.User, reminderId string, completed bool) error {
	err := s.Store.SetReminderCompleted(ctx, owner.Id, reminderId, completed)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionReminders,
		Action:     "updated",
		Id:         reminderId,
		OwnerId:    owner.Id,
	})

	return nil
}

func (s *Service) DeleteReminder(ctx context.Context, owner models.User, reminderId string) error {
	err := s.Store.DeleteReminder(ctx, owner.Id, reminderId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionReminders,
		Action:     "deleted",
		Id:         reminderId,
		OwnerId:    owner.Id,
	})

	return nil
}
