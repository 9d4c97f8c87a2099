package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"studyhub/models"
	"studyhub/service"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

type authResponse struct {
	Id          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Provider    string `json:"provider"`
	Token       string `json:"token"`
}

func newAuthResponse(user models.User, token string) authResponse {
	return authResponse{
		Id:          user.Id,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Provider:    user.Provider,
		Token:       token,
	}
}

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.Service.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.sendServiceError(w, err, "sign up failed")
		return
	}

	h.sendResponse(w, newAuthResponse(user, token))
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.Service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.sendServiceError(w, err, "sign in failed")
		return
	}

	h.sendResponse(w, newAuthResponse(user, token))
}

type oauthLoginRequest struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
}

func (h *Handler) HandleOauthLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req oauthLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.Service.Login(r.Context(), req.Provider, req.Code)
	if err != nil {
		log.Printf("Login failed: %v", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.sendResponse(w, newAuthResponse(user, token))
}

type getUserResponse struct {
	Id             string `json:"id"`
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	AvatarURL      string `json:"avatarUrl"`
	Provider       string `json:"provider"`
	TaskCount      int    `json:"taskCount"`
	CompletedCount int    `json:"completedCount"`
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		user, ok := h.authenticate(w, r)
		if !ok {
			return
		}
		taskCount, completedCount := h.Service.UserTaskCounts(r.Context(), user)
		h.sendResponse(w, getUserResponse{
			Id:             user.Id,
			Email:          user.Email,
			DisplayName:    user.DisplayName,
			AvatarURL:      user.AvatarURL,
			Provider:       user.Provider,
			TaskCount:      taskCount,
			CompletedCount: completedCount,
		})

	case http.MethodDelete:
		user, ok := h.authenticate(w, r)
		if !ok {
			return
		}
		if err := h.Service.DeleteUser(r.Context(), user); err != nil {
			http.Error(w, "failed to delete user", http.StatusInternalServerError)
			return
		}
		h.sendResponse(w, successResponse{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleTopics(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		topics, err := h.Service.ListTopicsWithProgress(r.Context(), user.Id)
		if err != nil {
			h.sendServiceError(w, err, "failed to list topics")
			return
		}
		h.sendResponse(w, topics)

	case http.MethodPost:
		var in service.TopicInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		topic, err := h.Service.CreateTopic(r.Context(), user, in)
		if err != nil {
			h.sendServiceError(w, err, "failed to create topic")
			return
		}
		h.sendResponse(w, topic)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleTopicById(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	topicId := r.PathValue("id")

	switch r.Method {
	case http.MethodPatch:
		var update service.TopicUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		topic, err := h.Service.UpdateTopic(r.Context(), user, topicId, update)
		if err != nil {
			h.sendServiceError(w, err, "failed to update topic")
			return
		}
		h.sendResponse(w, topic)

	case http.MethodDelete:
		if err := h.Service.DeleteTopic(r.Context(), user, topicId); err != nil {
			h.sendServiceError(w, err, "failed to delete topic")
			return
		}
		h.sendResponse(w, successResponse{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type visibilityRequest struct {
	Public bool `json:"public"`
}

func (h *Handler) HandleTopicVisibility(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetTopicPublic(r.Context(), user, r.PathValue("id"), req.Public); err != nil {
		h.sendServiceError(w, err, "failed to change topic visibility")
		return
	}
	h.sendResponse(w, successResponse{Success: true})
}

func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		tasks, err := h.Service.ListTasks(r.Context(), user.Id, r.URL.Query().Get("topic"))
		if err != nil {
			h.sendServiceError(w, err, "failed to list tasks")
			return
		}
		h.sendResponse(w, tasks)

	case http.MethodPost:
		var in service.TaskInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		task, err := h.Service.CreateTask(r.Context(), user, in)
		if err != nil {
			h.sendServiceError(w, err, "failed to create task")
			return
		}
		h.sendResponse(w, task)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleTaskById(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	taskId := r.PathValue("id")

	switch r.Method {
	case http.MethodPatch:
		var update service.TaskUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		task, err := h.Service.UpdateTask(r.Context(), user, taskId, update)
		if err != nil {
			h.sendServiceError(w, err, "failed to update task")
			return
		}
		h.sendResponse(w, task)

	case http.MethodDelete:
		if err := h.Service.DeleteTask(r.Context(), user, taskId); err != nil {
			h.sendServiceError(w, err, "failed to delete task")
			return
		}
		h.sendResponse(w, successResponse{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type completeRequest struct {
	Completed bool `json:"completed"`
}

func (h *Handler) HandleTaskComplete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetTaskCompleted(r.Context(), user, r.PathValue("id"), req.Completed); err != nil {
		h.sendServiceError(w, err, "failed to change task completion")
		return
	}
	h.sendResponse(w, successResponse{Success: true})
}

func (h *Handler) HandleReminders(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		reminders, err := h.Service.ListReminders(r.Context(), user.Id, r.URL.Query().Get("topic"))
		if err != nil {
			h.sendServiceError(w, err, "failed to list reminders")
			return
		}
		h.sendResponse(w, reminders)

	case http.MethodPost:
		var in service.ReminderInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		reminder, err := h.Service.CreateReminder(r.Context(), user, in)
		if err != nil {
			h.sendServiceError(w, err, "failed to create reminder")
			return
		}
		h.sendResponse(w, reminder)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleReminderById(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.Service.DeleteReminder(r.Context(), user, r.PathValue("id")); err != nil {
		h.sendServiceError(w, err, "failed to delete reminder")
		return
	}
	h.sendResponse(w, successResponse{Success: true})
}

func (h *Handler) HandleReminderComplete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetReminderCompleted(r.Context(), user, r.PathValue("id"), req.Completed); err != nil {
		h.sendServiceError(w, err, "failed to change reminder completion")
		return
	}
	h.sendResponse(w, successResponse{Success: true})
}

func (h *Handler) HandleNotes(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		notes, err := h.Service.ListNotes(r.Context(), user.Id, r.URL.Query().Get("topic"))
		if err != nil {
			h.sendServiceError(w, err, "failed to list notes")
			return
		}
		h.sendResponse(w, notes)

	case http.MethodPost:
		var in service.NoteInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		note, err := h.Service.CreateNote(r.Context(), user, in)
		if err != nil {
			h.sendServiceError(w, err, "failed to create note")
			return
		}
		h.sendResponse(w, note)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleNoteById(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	noteId := r.PathValue("id")

	switch r.Method {
	case http.MethodPatch:
		var update service.NoteUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		note, err := h.Service.UpdateNote(r.Context(), user, noteId, update)
		if err != nil {
			h.sendServiceError(w, err, "failed to update note")
			return
		}
		h.sendResponse(w, note)

	case http.MethodDelete:
		if err := h.Service.DeleteNote(r.Context(), user, noteId); err != nil {
			h.sendServiceError(w, err, "failed to delete note")
			return
		}
		h.sendResponse(w, successResponse{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePublicTopic serves the shared topic page data. No auth: visibility
// is decided purely by the topic's public flag. The mux decodes the two
// path segments, so names containing spaces or unicode arrive verbatim.
func (h *Handler) HandlePublicTopic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := r.PathValue("username")
	topicName := r.PathValue("topicName")

	view, err := h.Service.ResolvePublicTopic(r.Context(), username, topicName)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.sendError(w, "topic not found", http.StatusNotFound)
			return
		}
		log.Printf("Public topic resolution failed for %s/%s: %v", username, topicName, err)
		h.sendError(w, "something went wrong", http.StatusInternalServerError)
		return
	}

	h.sendResponse(w, view)
}

type successResponse struct {
	Success bool `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// sendServiceError maps service sentinels onto status codes without leaking
// internals to the client.
func (h *Handler) sendServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		log.Printf("%s: %v", fallback, err)
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, err := h.Service.AuthenticateToken(r.Context(), h.getTokenFromAuthHeader(r))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return models.User{}, false
	}
	return user, true
}

func (h *Handler) getTokenFromAuthHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimPrefix(authHeader, prefix)
}
