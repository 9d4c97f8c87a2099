package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"studyhub/models"
	"studyhub/store"
	"studyhub/worker"
)

type TaskInput struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Priority     models.Priority `json:"priority"`
	DueDate      int64           `json:"dueDate"`
	ReminderDate int64           `json:"reminderDate"`
	TopicId      string          `json:"topicId"`
	Tags         []string        `json:"tags"`
}

type TaskUpdate struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Priority     *models.Priority `json:"priority"`
	DueDate      *int64           `json:"dueDate"`
	ReminderDate *int64           `json:"reminderDate"`
	Tags         *[]string        `json:"tags"`
}

// CreateTask stamps owner and timestamps server-side. The topicId is stored
// as given; nothing verifies the topic still exists (matching delete, which
// never cascades).
func (s *Service) CreateTask(ctx context.Context, owner models.User, in TaskInput) (models.Task, error) {
	if err := ValidateTitle(in.Title); err != nil {
		return models.Task{}, err
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := ValidatePriority(in.Priority); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		Title:        in.Title,
		Description:  in.Description,
		Priority:     in.Priority,
		DueDate:      in.DueDate,
		ReminderDate: in.ReminderDate,
		TopicId:      in.TopicId,
		OwnerId:      owner.Id,
		Tags:         in.Tags,
	}

	created, err := s.Store.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}

	s.bumpTaskStats(ctx, owner, 1, 0)
	s.publishChange(ChangeEvent{
		Collection: CollectionTasks,
		Action:     "created",
		Id:         created.Id,
		OwnerId:    owner.Id,
		TopicId:    created.TopicId,
	})

	return created, nil
}

// ListTasks fetches the owner's whole task set and scopes by topic in memory.
func (s *Service) ListTasks(ctx context.Context, ownerId string, topicId string) ([]models.Task, error) {
	rows, err := s.Store.ListTasks(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	return ProjectTasks(rows, ownerId, topicId), nil
}

func (s *Service) UpdateTask(ctx context.Context, owner models.User, taskId string, update TaskUpdate) (models.Task, error) {
	task := models.Task{
		Id:      taskId,
		OwnerId: owner.Id,
		Updated: time.Now().UnixMilli(),
	}

	var fields []string
	if update.Title != nil {
		if err := ValidateTitle(*update.Title); err != nil {
			return models.Task{}, err
		}
		task.Title = *update.Title
		fields = append(fields, "Title")
	}
	if update.Description != nil {
		task.Description = *update.Description
		fields = append(fields, "Description")
	}
	if update.Priority != nil {
		if err := ValidatePriority(*update.Priority); err != nil {
			return models.Task{}, err
		}
		task.Priority = *update.Priority
		fields = append(fields, "Priority")
	}
	if update.DueDate != nil {
		task.DueDate = *update.DueDate
		fields = append(fields, "DueDate")
	}
	if update.ReminderDate != nil {
		task.ReminderDate = *update.ReminderDate
		fields = append(fields, "ReminderDate")
	}
	if update.Tags != nil {
		task.Tags = *update.Tags
		fields = append(fields, "Tags")
	}

	if len(fields) == 0 {
		return models.Task{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	updated, err := s.Store.UpdateTask(ctx, task, fields)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionTasks,
		Action:     "updated",
		Id:         taskId,
		OwnerId:    owner.Id,
		TopicId:    updated.TopicId,
	})

	return updated, nil
}

// SetTaskCompleted flips the completion flag and refreshes the update
// timestamp. The caller sees the change through the snapshot channel, not an
// optimistic response.
func (s *Service) SetTaskCompleted(ctx context.Context, owner models.User, taskId string, completed bool) error {
	task, err := s.Store.GetTask(ctx, owner.Id, taskId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}
	if task.Completed == completed {
		return nil // no-op toggle
	}

	if err := s.Store.SetTaskCompleted(ctx, owner.Id, taskId, completed, time.Now().UnixMilli()); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	completedDelta := 1
	if !completed {
		completedDelta = -1
	}
	s.bumpTaskStats(ctx, owner, 0, completedDelta)

	s.publishChange(ChangeEvent{
		Collection: CollectionTasks,
		Action:     "updated",
		Id:         taskId,
		OwnerId:    owner.Id,
		TopicId:    task.TopicId,
	})

	return nil
}

func (s *Service) DeleteTask(ctx context.Context, owner models.User, taskId string) error {
	task, err := s.Store.GetTask(ctx, owner.Id, taskId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.Store.DeleteTask(ctx, owner.Id, taskId); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	completedDelta := 0
	if task.Completed {
		completedDelta = -1
	}
	s.bumpTaskStats(ctx, owner, -1, completedDelta)

	s.publishChange(ChangeEvent{
		Collection: CollectionTasks,
		Action:     "deleted",
		Id:         taskId,
		OwnerId:    owner.Id,
		TopicId:    task.TopicId,
	})

	return nil
}

// UserTaskCounts returns the user's task and completed-task counters,
// preferring the redis mirror over the profile document, which only catches
// up on batcher flushes. A cache miss or error falls back to the profile.
func (s *Service) UserTaskCounts(ctx context.Context, user models.User) (int, int) {
	tasks, completed, err := s.Cache.GetUserTaskCounts(ctx, user.Id)
	if err != nil {
		log.Printf("Failed to read cached task counts for user %s: %v", user.Id, err)
		return user.TaskCount, user.CompletedCount
	}
	if tasks < 0 {
		return user.TaskCount, user.CompletedCount
	}
	return tasks, completed
}

// bumpTaskStats mirrors the deltas into the redis counters right away and
// queues the durable profile update on the batcher.
func (s *Service) bumpTaskStats(ctx context.Context, owner models.User, taskDelta int, completedDelta int) {
	if taskDelta == 0 && completedDelta == 0 {
		return
	}

	if err := s.Cache.IncrementUserTaskCounts(ctx, owner.Id, taskDelta, completedDelta); err != nil {
		log.Printf("Failed to bump cached task counts for user %s: %v", owner.Id, err)
	}

	s.StatsBatcher.UpdateCh <- worker.StatsUpdate{
		UserId:         owner.Id,
		UserProvider:   owner.Provider,
		UserProviderId: owner.ProviderId,
		TaskDelta:      taskDelta,
		CompletedDelta: completedDelta,
	}
}
