package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"studyhub/api/rest"
	"studyhub/api/ws"
	"studyhub/cache"
	"studyhub/mq"
	"studyhub/service"
	"studyhub/store"
	"studyhub/worker"
)

type StudyHubAPI struct {
	restHandler *rest.Handler
	wsHandler   *ws.Handler
	shutdownCtx context.Context
}

func NewStudyHubAPI(
	studyStore store.StudyStore,
	purgeQueue mq.MessageQueue,
	studyCache cache.StudyCache,
	oauthConfigs map[string]*oauth2.Config,
	jwtSecret []byte,
	shutdownCtx context.Context,
) (*StudyHubAPI, error) {
	wsHub := ws.NewHub(studyCache)
	err := wsHub.InitSubscriptions(shutdownCtx)
	if err != nil {
		log.Printf("Failed to start WS Hub subscriptions service: %v", err)
		return &StudyHubAPI{}, err
	}

	statsBatcher := worker.NewStatsBatcher(studyStore, 60000)
	go statsBatcher.Run(shutdownCtx)

	purgeConsumer := worker.NewPurgeConsumer(purgeQueue, studyStore, studyCache)
	go purgeConsumer.Run(shutdownCtx)

	svc, err := service.NewService(
		studyStore,
		studyCache,
		purgeQueue,
		statsBatcher,
		oauthConfigs,
		jwtSecret,
	)
	if err != nil {
		log.Printf("Failed to create service: %v", err)
		return &StudyHubAPI{}, err
	}

	restHandler := rest.NewHandler(svc)
	wsHandler := ws.NewHandler(svc, wsHub)
	go wsHub.Run()

	return &StudyHubAPI{
		restHandler: restHandler,
		wsHandler:   wsHandler,
		shutdownCtx: shutdownCtx,
	}, nil
}

func (studyHubAPI *StudyHubAPI) RegisterRoutes(mux *http.ServeMux, requiredOrigin string) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/auth/signup", studyHubAPI.restHandler.HandleSignUp)
	mux.HandleFunc("/auth/signin", studyHubAPI.restHandler.HandleSignIn)
	mux.HandleFunc("/auth/oauth", studyHubAPI.restHandler.HandleOauthLogin)
	mux.HandleFunc("/me", studyHubAPI.restHandler.HandleMe)

	mux.HandleFunc("/topics", studyHubAPI.restHandler.HandleTopics)
	mux.HandleFunc("/topics/{id}", studyHubAPI.restHandler.HandleTopicById)
	mux.HandleFunc("/topics/{id}/visibility", studyHubAPI.restHandler.HandleTopicVisibility)

	mux.HandleFunc("/tasks", studyHubAPI.restHandler.HandleTasks)
	mux.HandleFunc("/tasks/{id}", studyHubAPI.restHandler.HandleTaskById)
	mux.HandleFunc("/tasks/{id}/complete", studyHubAPI.restHandler.HandleTaskComplete)

	mux.HandleFunc("/reminders", studyHubAPI.restHandler.HandleReminders)
	mux.HandleFunc("/reminders/{id}", studyHubAPI.restHandler.HandleReminderById)
	mux.HandleFunc("/reminders/{id}/complete", studyHubAPI.restHandler.HandleReminderComplete)

	mux.HandleFunc("/notes", studyHubAPI.restHandler.HandleNotes)
	mux.HandleFunc("/notes/{id}", studyHubAPI.restHandler.HandleNoteById)

	mux.HandleFunc("/p/{username}/{topicName}", studyHubAPI.restHandler.HandlePublicTopic)

	wsUpgrader := studyHubAPI.wsHandler.NewWsUpgrader(requiredOrigin)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		studyHubAPI.wsHandler.ServeWS(wsUpgrader, w, r, studyHubAPI.shutdownCtx)
	})
}
