package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyhub/models"
	"studyhub/store"
)

type NoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	TopicId string   `json:"topicId"`
	Tags    []string `json:"tags"`
}

type NoteUpdate struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

func (s *Service) CreateNote(ctx context.Context, owner models.User, in NoteInput) (models.Note, error) {
	if err := ValidateTitle(in.Title); err != nil {
		return models.Note{}, err
	}
	if err := ValidateContent(in.Content); err != nil {
		return models.Note{}, err
	}

	note := models.Note{
		Title:   in.Title,
		Content: in.Content,
		TopicId: in.TopicId,
		OwnerId: owner.Id,
		Tags:    in.Tags,
	}

	created, err := s.Store.CreateNote(ctx, note)
	if err != nil {
		return models.Note{}, err
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionNotes,
		Action:     "created",
		Id:         created.Id,
		OwnerId:    owner.Id,
		TopicId:    created.TopicId,
	})

	return created, nil
}

func (s *Service) ListNotes(ctx context.Context, ownerId string, topicId string) ([]models.Note, error) {
	rows, err := s.Store.ListNotes(ctx, ownerId)
	if err != nil {
		return nil, err
	}
	return ProjectNotes(rows, ownerId, topicId), nil
}

func (s *Service) UpdateNote(ctx context.Context, owner models.User, noteId string, update NoteUpdate) (models.Note, error) {
	note := models.Note{
		Id:      noteId,
		OwnerId: owner.Id,
		Updated: time.Now().UnixMilli(),
	}

	var fields []string
	if update.Title != nil {
		if err := ValidateTitle(*update.Title); err != nil {
			return models.Note{}, err
		}
		note.Title = *update.Title
		fields = append(fields, "Title")
	}
	if update.Content != nil {
		if err := ValidateContent(*update.Content); err != nil {
			return models.Note{}, err
		}
		note.Content = *update.Content
		fields = append(fields, "Content")
	}
	if update.Tags != nil {
		note.Tags = *update.Tags
		fields = append(fields, "Tags")
	}

	if len(fields) == 0 {
		return models.Note{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	updated, err := s.Store.UpdateNote(ctx, note, fields)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Note{}, ErrNotFound
		}
		return models.Note{}, err
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionNotes,
		Action:     "updated",
		Id:         noteId,
		OwnerId:    owner.Id,
		TopicId:    updated.TopicId,
	})

	return updated, nil
}

func (s *Service) DeleteNote(ctx context.Context, owner models.User, noteId string) error {
	err := s.Store.DeleteNote(ctx, owner.Id, noteId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.publishChange(ChangeEvent{
		Collection: CollectionNotes,
		Action:     "deleted",
		Id:         noteId,
		OwnerId:    owner.Id,
	})

	return nil
}
