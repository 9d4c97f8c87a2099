package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"studyhub/api"
	"studyhub/cache/redis"
	"studyhub/mq/sqsmq"
	"studyhub/store/dynamo"
)

const (
	DynamoDBTable         = "StudyHub"
	SQSPurgeUserDataQueue = "PurgeUserDataQueue"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	devMode := os.Getenv("DEV_MODE") == "true"
	if devMode {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx := context.Background()

	studyStore, err := dynamo.NewDynamoStudyStore(ctx, devMode, os.Getenv("DYNAMODB_ENDPOINT"), DynamoDBTable)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create dynamodb store")
	}

	purgeQueue, err := sqsmq.NewSQSMessageQueue(ctx, devMode, os.Getenv("SQS_ENDPOINT"), SQSPurgeUserDataQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create SQS MQ")
	}

	studyCache, err := redis.NewRedisStudyCache(ctx, devMode, os.Getenv("REDIS_ENDPOINT"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create redis cache")
	}

	var oauthConfigs = map[string]*oauth2.Config{
		"github": {
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OAUTH_REDIRECT_URL"),
		},
		"google": {
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OAUTH_REDIRECT_URL"),
		},
	}

	jwtSecret, err := base64.StdEncoding.DecodeString(os.Getenv("JWT_SECRET"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode base64 jwtSecret")
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	studyHubApi, err := api.NewStudyHubAPI(studyStore, purgeQueue, studyCache, oauthConfigs, jwtSecret, shutdownCtx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create studyhub api")
	}

	mux := http.NewServeMux()
	studyHubApi.RegisterRoutes(mux, os.Getenv("ALLOWED_ORIGIN"))

	hostPort := "8080"
	if p := os.Getenv("HOST_PORT"); p != "" {
		hostPort = p
	}
	log.Printf("Starting server on host port: %s", hostPort)
	if err := http.ListenAndServe(":"+hostPort, mux); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
