package service

import (
	"errors"

	"golang.org/x/oauth2"

	"studyhub/cache"
	"studyhub/mq"
	"studyhub/store"
	"studyhub/worker"
)

// Errors surfaced to the API boundary, mapped to status codes there.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	Store        store.StudyStore
	Cache        cache.StudyCache
	MQ           mq.MessageQueue
	StatsBatcher *worker.StatsBatcher
	OAuthConfigs map[string]*oauth2.Config
	JWTSecret    []byte
}

func NewService(
	store store.StudyStore,
	cache cache.StudyCache,
	mq mq.MessageQueue,
	statsBatcher *worker.StatsBatcher,
	oauthConfigs map[string]*oauth2.Config,
	jwtSecret []byte,
) (*Service, error) {
	oauthConfigs, err := addOauthEndpointsAndScopes(oauthConfigs)
	if err != nil {
		return nil, err
	}

	return &Service{
		Store:        store,
		Cache:        cache,
		MQ:           mq,
		StatsBatcher: statsBatcher,
		OAuthConfigs: oauthConfigs,
		JWTSecret:    jwtSecret,
	}, nil
}
