package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"studyhub/cache"
	"studyhub/models"
	"studyhub/store"
)

// PublicTopicView is everything the shared topic page renders: the topic,
// a sanitized owner profile, and the topic's live task and reminder lists.
type PublicTopicView struct {
	Topic      models.Topic   `json:"topic"`
	Owner      models.User    `json:"owner"`
	Tasks      []models.Task  `json:"tasks"`
	Reminders  []ReminderView `json:"reminders"`
	Completion int            `json:"completion"`
}

// ResolvePublicTopic maps a decoded username/topic-name pair to a public
// topic. Matching is exact and case-sensitive on both segments. Display
// names are not unique anywhere; on collision the first match wins, the
// same behavior a collision would produce at sign-up time.
func (s *Service) ResolvePublicTopic(ctx context.Context, username string, topicName string) (PublicTopicView, error) {
	if cached, ok := s.lookupCachedSlug(ctx, username, topicName); ok {
		view, err := s.loadPublicView(ctx, cached.OwnerId, cached.TopicId, topicName)
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return PublicTopicView{}, err
		}
		// Cache went stale (rename, privacy toggle, delete); resolve fresh
	}

	owner, topic, err := s.resolveSlug(ctx, username, topicName)
	if err != nil {
		return PublicTopicView{}, err
	}

	if err := s.Cache.SetResolvedSlug(ctx, username, topicName, cache.ResolvedSlug{
		OwnerId: owner.Id,
		TopicId: topic.Id,
	}); err != nil {
		log.Printf("Failed to cache slug resolution: %v", err)
	}

	return s.buildPublicView(ctx, owner, topic)
}

func (s *Service) lookupCachedSlug(ctx context.Context, username string, topicName string) (cache.ResolvedSlug, bool) {
	resolved, ok, err := s.Cache.GetResolvedSlug(ctx, username, topicName)
	if err != nil {
		log.Printf("Slug cache lookup failed: %v", err)
		return cache.ResolvedSlug{}, false
	}
	return resolved, ok
}

// resolveSlug is the two-step lookup: user by display name, then an exact
// name match among that user's public topics. The topic query never runs
// when the username resolves to nobody.
func (s *Service) resolveSlug(ctx context.Context, username string, topicName string) (models.User, models.Topic, error) {
	users, err := s.Store.FindUsersByDisplayName(ctx, username)
	if err != nil {
		return models.User{}, models.Topic{}, fmt.Errorf("user lookup failed: %w", err)
	}
	if len(users) == 0 {
		return models.User{}, models.Topic{}, ErrNotFound
	}
	owner := users[0]

	topics, err := s.Store.ListTopics(ctx, owner.Id)
	if err != nil {
		return models.User{}, models.Topic{}, fmt.Errorf("topic lookup failed: %w", err)
	}

	for _, t := range topics {
		if t.Public && t.Name == topicName {
			return owner, t, nil
		}
	}

	return models.User{}, models.Topic{}, ErrNotFound
}

// loadPublicView serves a cache hit: fetch by ids and re-check that the
// topic is still public under the requested name.
func (s *Service) loadPublicView(ctx context.Context, ownerId string, topicId string, topicName string) (PublicTopicView, error) {
	topic, err := s.Store.GetTopic(ctx, ownerId, topicId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return PublicTopicView{}, ErrNotFound
		}
		return PublicTopicView{}, err
	}
	if !topic.Public || topic.Name != topicName {
		return PublicTopicView{}, ErrNotFound
	}

	owner, err := s.Store.GetUserById(ctx, ownerId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return PublicTopicView{}, ErrNotFound
		}
		return PublicTopicView{}, err
	}

	return s.buildPublicView(ctx, owner, topic)
}

func (s *Service) buildPublicView(ctx context.Context, owner models.User, topic models.Topic) (PublicTopicView, error) {
	tasks, err := s.ListTasks(ctx, owner.Id, topic.Id)
	if err != nil {
		return PublicTopicView{}, fmt.Errorf("task load failed: %w", err)
	}

	reminders, err := s.ListReminders(ctx, owner.Id, topic.Id)
	if err != nil {
		return PublicTopicView{}, fmt.Errorf("reminder load failed: %w", err)
	}

	return PublicTopicView{
		Topic:      topic,
		Owner:      owner.PublicProfile(),
		Tasks:      tasks,
		Reminders:  reminders,
		Completion: CompletionPercent(tasks),
	}, nil
}

// GetPublicTopic authorizes live subscriptions to a shared topic page.
func (s *Service) GetPublicTopic(ctx context.Context, ownerId string, topicId string) (models.Topic, error) {
	topic, err := s.Store.GetTopic(ctx, ownerId, topicId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Topic{}, ErrNotFound
		}
		return models.Topic{}, err
	}
	if !topic.Public {
		return models.Topic{}, ErrNotFound
	}

	return topic, nil
}
