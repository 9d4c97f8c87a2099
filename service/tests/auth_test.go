package service_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"studyhub/models"
	"studyhub/service"
	"studyhub/store"
)

func TestCreateAndVerifyJWT(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	id := "user123"
	provider := "google"
	providerId := "p123"

	// 1. Create
	token, err := svc.CreateJWT(id, provider, providerId)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// 2. Verify
	gotId, gotProvider, gotProviderId, expiry, err := svc.VerifyJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, id, gotId)
	assert.Equal(t, provider, gotProvider)
	assert.Equal(t, providerId, gotProviderId)
	assert.True(t, expiry.After(time.Now()))
}

func TestVerifyJWT_Invalid(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, _, _, _, err := svc.VerifyJWT("invalid.token.string")
	assert.Error(t, err)
}

func TestVerifyJWT_Empty(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, _, _, _, err := svc.VerifyJWT("")
	assert.Error(t, err)
}

func TestVerifyJWT_InvalidSigningMethod(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	// A JWT with the "none" algorithm must never pass verification
	header := map[string]string{
		"alg": "none",
		"typ": "JWT",
	}
	payload := map[string]any{
		"id":         "attacker_user",
		"provider":   "github",
		"providerId": "attacker_123",
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
		"iat":        time.Now().Unix(),
	}

	headerBytes, _ := json.Marshal(header)
	payloadBytes, _ := json.Marshal(payload)

	enc := base64.RawURLEncoding
	noneToken := enc.EncodeToString(headerBytes) + "." + enc.EncodeToString(payloadBytes) + "."

	_, _, _, _, err := svc.VerifyJWT(noneToken)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "signing method none is invalid")
}

func TestAuthenticateToken_Success(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	user := models.User{
		Id:          "user1",
		Provider:    "github",
		ProviderId:  "gh123",
		DisplayName: "testuser",
	}
	token, _ := svc.CreateJWT(user.Id, user.Provider, user.ProviderId)

	mockStore.On("GetUser", ctx, user.Provider, user.ProviderId).Return(user, nil)

	gotUser, err := svc.AuthenticateToken(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, user.Id, gotUser.Id)
	assert.Equal(t, user.DisplayName, gotUser.DisplayName)
}

func TestAuthenticateToken_UserNotFound(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	user := models.User{Id: "u1", Provider: "p", ProviderId: "pid"}
	token, _ := svc.CreateJWT(user.Id, user.Provider, user.ProviderId)

	mockStore.On("GetUser", ctx, user.Provider, user.ProviderId).Return(models.User{}, assert.AnError)

	_, err := svc.AuthenticateToken(ctx, token)
	assert.Error(t, err)
}

func TestAuthenticateToken_EmptyToken(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, err := svc.AuthenticateToken(context.Background(), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "token not provided")
}

func TestSignUp_Success(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetUser", ctx, service.ProviderPassword, "ada@example.com").
		Return(models.User{}, store.ErrItemNotFound)
	mockStore.On("CreateUser", ctx, mock.MatchedBy(func(u models.User) bool {
		// Email is normalized and the password never stored in clear
		return u.Email == "ada@example.com" &&
			u.Provider == service.ProviderPassword &&
			u.ProviderId == "ada@example.com" &&
			u.DisplayName == "Ada" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")) == nil
	})).Return(models.User{Id: "user1", Provider: service.ProviderPassword, ProviderId: "ada@example.com"}, nil)

	user, token, err := svc.SignUp(ctx, "  Ada@Example.com ", "correct horse", "Ada")
	assert.NoError(t, err)
	assert.Equal(t, "user1", user.Id)
	assert.NotEmpty(t, token)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetUser", ctx, service.ProviderPassword, "ada@example.com").
		Return(models.User{Id: "existing"}, nil)

	_, _, err := svc.SignUp(ctx, "ada@example.com", "correct horse", "Ada")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	mockStore.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestSignUp_WeakPassword(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, _, err := svc.SignUp(context.Background(), "ada@example.com", "short", "Ada")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSignUp_DisplayNameWithSlash(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	// A slash would split the public URL path segment
	_, _, err := svc.SignUp(context.Background(), "ada@example.com", "correct horse", "Ada/Lovelace")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSignIn_Success(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	user := models.User{
		Id:           "user1",
		Provider:     service.ProviderPassword,
		ProviderId:   "ada@example.com",
		PasswordHash: string(hash),
	}
	mockStore.On("GetUser", ctx, service.ProviderPassword, "ada@example.com").Return(user, nil)

	gotUser, token, err := svc.SignIn(ctx, "Ada@Example.com", "correct horse")
	assert.NoError(t, err)
	assert.Equal(t, "user1", gotUser.Id)
	assert.NotEmpty(t, token)
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	mockStore.On("GetUser", ctx, service.ProviderPassword, "ada@example.com").
		Return(models.User{PasswordHash: string(hash)}, nil)

	_, _, err := svc.SignIn(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	// Indistinguishable from a wrong password at the API boundary
	mockStore.On("GetUser", ctx, service.ProviderPassword, "nobody@example.com").
		Return(models.User{}, store.ErrItemNotFound)

	_, _, err := svc.SignIn(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestHandleOauth_UnsupportedProvider(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, err := svc.HandleOauth(context.Background(), "unsupported", "code")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestHandleOauth_TokenExchangeFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "invalid_code",
		})
	}))
	defer server.Close()

	oauthConfigs := map[string]*oauth2.Config{
		"github": {
			Endpoint: oauth2.Endpoint{
				AuthURL:  server.URL + "/auth",
				TokenURL: server.URL + "/token",
			},
			RedirectURL: "http://localhost/callback",
		},
	}

	svc, _, _, _, _ := setupService(t)
	svc.OAuthConfigs = oauthConfigs

	_, err := svc.HandleOauth(context.Background(), "github", "invalid_code")
	assert.Error(t, err)
}

func TestDeleteUser_Success(t *testing.T) {
	svc, mockStore, mockCache, mockMQ, _ := setupService(t)
	ctx := context.Background()

	user := models.User{
		Id:          "user1",
		Provider:    "google",
		ProviderId:  "123",
		DisplayName: "Ada",
	}

	mockStore.On("DeleteUser", ctx, user.Provider, user.ProviderId).Return(nil)

	// Async expectations with channel synchronization
	publishDone := wrapMockWithSignal(mockCache.On("Publish", mock.Anything, "user-deleted", mock.MatchedBy(func(msg []byte) bool {
		return string(msg) == `{"userId":"user1"}`
	})).Return(nil))

	mqSendDone := wrapMockWithSignal(mockMQ.On("Send", mock.Anything, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, `"userId":"user1"`) && strings.Contains(body, `"displayName":"Ada"`)
	})).Return(nil))

	err := svc.DeleteUser(ctx, user)
	assert.NoError(t, err)

	select {
	case <-publishDone:
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for Publish")
	}

	select {
	case <-mqSendDone:
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for MQ Send")
	}
}

func TestDeleteUser_AsyncPublishFails(t *testing.T) {
	svc, mockStore, mockCache, mockMQ, _ := setupService(t)
	ctx := context.Background()

	user := models.User{
		Id:         "user1",
		Provider:   "google",
		ProviderId: "123",
	}

	mockStore.On("DeleteUser", ctx, user.Provider, user.ProviderId).Return(nil)

	// Publish fails in the async goroutine
	mockCache.On("Publish", mock.Anything, "user-deleted", mock.Anything).Return(errors.New("pubsub failed"))
	mockMQ.On("Send", mock.Anything, mock.Anything).Return(nil)

	err := svc.DeleteUser(ctx, user)

	// Async errors don't affect the return
	assert.NoError(t, err)
}

func TestDeleteUser_StoreFails(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	user := models.User{Id: "user1", Provider: "google", ProviderId: "123"}
	mockStore.On("DeleteUser", ctx, user.Provider, user.ProviderId).Return(errors.New("dynamo down"))

	err := svc.DeleteUser(ctx, user)
	assert.Error(t, err)
}
