package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"studyhub/models"
	"studyhub/store"
)

const defaultTopicColor = "#3B82F6"

type TopicInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	FolderPath  string `json:"folderPath"`
	Public      bool   `json:"public"`
}

// TopicUpdate carries only the fields the caller wants changed.
type TopicUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	FolderPath  *string `json:"folderPath"`
}

type TopicProgress struct {
	models.Topic
	Completion int `json:"completion"`
}

func (s *Service) CreateTopic(ctx context.Context, owner models.User, in TopicInput) (models.Topic, error) {
	if err := ValidateTopicName(in.Name); err != nil {
		return models.Topic{}, err
	}
	if in.Color == "" {
		in.Color = defaultTopicColor
	}
	if err := ValidateColor(in.Color); err != nil {
		return models.Topic{}, err
	}

	topic := models.Topic{
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Icon:        in.Icon,
		OwnerId:     owner.Id,
		FolderPath:  in.FolderPath,
		Public:      in.Public,
	}

	created, err := s.Store.CreateTopic(ctx, topic)
	if err != nil {
		return models.Topic{}, err
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionTopics,
		Action:     "created",
		Id:         created.Id,
		OwnerId:    owner.Id,
	})

	return created, nil
}

func (s *Service) ListTopics(ctx context.Context, ownerId string) ([]models.Topic, error) {
	rows, err := s.Store.ListTopics(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	return ProjectTopics(rows, ownerId), nil
}

// ListTopicsWithProgress joins each topic with its completion percentage,
// computed from one broad task fetch rather than a query per topic.
func (s *Service) ListTopicsWithProgress(ctx context.Context, ownerId string) ([]TopicProgress, error) {
	topics, err := s.ListTopics(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	taskRows, err := s.Store.ListTasks(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	out := make([]TopicProgress, 0, len(topics))
	for _, t := range topics {
		out = append(out, TopicProgress{
			Topic:      t,
			Completion: CompletionPercent(ProjectTasks(taskRows, ownerId, t.Id)),
		})
	}

	return out, nil
}

func (s *Service) UpdateTopic(ctx context.Context, owner models.User, topicId string, update TopicUpdate) (models.Topic, error) {
	topic := models.Topic{
		Id:      topicId,
		OwnerId: owner.Id,
		Updated: time.Now().UnixMilli(),
	}

	var fields []string
	nameChanged := false
	if update.Name != nil {
		if err := ValidateTopicName(*update.Name); err != nil {
			return models.Topic{}, err
		}
		topic.Name = *update.Name
		fields = append(fields, "Name")
		nameChanged = true
	}
	if update.Description != nil {
		topic.Description = *update.Description
		fields = append(fields, "Description")
	}
	if update.Color != nil {
		if err := ValidateColor(*update.Color); err != nil {
			return models.Topic{}, err
		}
		topic.Color = *update.Color
		fields = append(fields, "Color")
	}
	if update.Icon != nil {
		topic.Icon = *update.Icon
		fields = append(fields, "Icon")
	}
	if update.FolderPath != nil {
		topic.FolderPath = *update.FolderPath
		fields = append(fields, "FolderPath")
	}

	if len(fields) == 0 {
		return models.Topic{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	updated, err := s.Store.UpdateTopic(ctx, topic, fields)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Topic{}, ErrNotFound
		}
		return models.Topic{}, err
	}

	if nameChanged {
		// A cached slug may now point at the old name
		if err := s.Cache.InvalidateSlugs(ctx, owner.DisplayName); err != nil {
			log.Printf("Failed to invalidate slugs for %s: %v", owner.DisplayName, err)
		}
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionTopics,
		Action:     "updated",
		Id:         topicId,
		OwnerId:    owner.Id,
	})

	return updated, nil
}

func (s *Service) SetTopicPublic(ctx context.Context, owner models.User, topicId string, public bool) error {
	err := s.Store.SetTopicPublic(ctx, owner.Id, topicId, public, time.Now().UnixMilli())
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.Cache.InvalidateSlugs(ctx, owner.DisplayName); err != nil {
		log.Printf("Failed to invalidate slugs for %s: %v", owner.DisplayName, err)
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionTopics,
		Action:     "updated",
		Id:         topicId,
		OwnerId:    owner.Id,
	})

	return nil
}

// DeleteTopic removes only the topic document. Tasks, reminders and notes
// keep their topicId and become orphans; no cascade happens here.
func (s *Service) DeleteTopic(ctx context.Context, owner models.User, topicId string) error {
	err := s.Store.DeleteTopic(ctx, owner.Id, topicId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.Cache.InvalidateSlugs(ctx, owner.DisplayName); err != nil {
		log.Printf("Failed to invalidate slugs for %s: %v", owner.DisplayName, err)
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionTopics,
		Action:     "deleted",
		Id:         topicId,
		OwnerId:    owner.Id,
	})

	return nil
}
