package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"studyhub/models"
	"studyhub/store"
	"studyhub/worker"
)

// ProviderPassword marks accounts created with email/password sign-up; the
// lowercased email doubles as the provider id so sign-in is a primary-key get.
const ProviderPassword = "password"

// Provider-specific structs
type gitHubUser struct {
	Login     string `json:"login"`
	ID        int    `json:"id"`
	AvatarURL string `json:"avatar_url"`
}

type googleUser struct {
	Email   string `json:"email"`
	Sub     string `json:"sub"`
	Picture string `json:"picture"`
}

var oauthAPIs = map[string]struct {
	URL     string
	Headers map[string]string
}{
	"github": {
		URL: "https://api.github.com/user",
		Headers: map[string]string{
			"X-GitHub-Api-Version": "2022-11-28",
		},
	},
	"google": {
		URL:     "https://openidconnect.googleapis.com/v1/userinfo",
		Headers: map[string]string{},
	},
}

var oauthConfigsTemplate = map[string]*oauth2.Config{
	"github": {
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://github.com/login/oauth/authorize",
			TokenURL: "https://github.com/login/oauth/access_token",
		},
		Scopes: []string{""},
	},
	"google": {
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		Scopes: []string{"openid", "email"},
	},
}

func addOauthEndpointsAndScopes(oauthConfigs map[string]*oauth2.Config) (map[string]*oauth2.Config, error) {
	for provider := range oauthConfigs {
		template, ok := oauthConfigsTemplate[provider]
		if !ok {
			return nil, fmt.Errorf("unsupported provider: %s", provider)
		}
		oauthConfigs[provider].Endpoint = template.Endpoint
		oauthConfigs[provider].Scopes = template.Scopes
	}

	return oauthConfigs, nil
}

func (s *Service) HandleOauth(ctx context.Context, provider string, code string) (models.User, error) {
	conf, ok := s.OAuthConfigs[provider]
	if !ok {
		return models.User{}, fmt.Errorf("unsupported provider: %s", provider)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		log.Printf("OAuth exchange error: %v", err)
		return models.User{}, err
	}

	client := conf.Client(ctx, tok)
	api, ok := oauthAPIs[provider]
	if !ok {
		return models.User{}, fmt.Errorf("unsupported provider: %s", provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.URL, nil)
	if err != nil {
		return models.User{}, err
	}
	for k, v := range api.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("OAuth userinfo error: %v", err)
		return models.User{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.User{}, err
	}

	return parseOauthUser(body, provider)
}

func parseOauthUser(jsonData []byte, provider string) (models.User, error) {
	var u models.User
	u.Provider = provider

	switch provider {
	case "github":
		var gh gitHubUser
		if err := json.Unmarshal(jsonData, &gh); err != nil {
			return models.User{}, err
		}
		u.DisplayName = gh.Login
		u.AvatarURL = gh.AvatarURL
		u.ProviderId = strconv.Itoa(gh.ID)
	case "google":
		var g googleUser
		if err := json.Unmarshal(jsonData, &g); err != nil {
			return models.User{}, err
		}
		u.Email = g.Email
		// Default handle: local part of the email, the account can rename later
		u.DisplayName, _, _ = strings.Cut(g.Email, "@")
		u.AvatarURL = g.Picture
		u.ProviderId = g.Sub
	default:
		return models.User{}, fmt.Errorf("unsupported provider: %s", provider)
	}

	return u, nil
}

func (s *Service) CreateJWT(id string, provider string, providerId string) (string, error) {
	claims := jwt.MapClaims{
		"id":         id,
		"provider":   provider,
		"providerId": providerId,
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

func (s *Service) VerifyJWT(tokenString string) (string, string, string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", "", time.Time{}, err
	}

	if !token.Valid {
		return "", "", "", time.Time{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", "", time.Time{}, errors.New("invalid token claims")
	}

	id, ok := claims["id"].(string)
	if !ok {
		return "", "", "", time.Time{}, errors.New("missing id claim")
	}

	provider, ok := claims["provider"].(string)
	if !ok {
		return "", "", "", time.Time{}, errors.New("missing provider claim")
	}

	providerId, ok := claims["providerId"].(string)
	if !ok {
		return "", "", "", time.Time{}, errors.New("missing providerId claim")
	}

	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return "", "", "", time.Time{}, errors.New("missing exp claim")
	}
	expiry := time.Unix(int64(expFloat), 0)

	return id, provider, providerId, expiry, nil
}

func (s *Service) AuthenticateToken(ctx context.Context, token string) (models.User, error) {
	if len(token) == 0 {
		return models.User{}, errors.New("token not provided")
	}

	_, provider, providerId, _, err := s.VerifyJWT(token)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.Store.GetUser(ctx, provider, providerId)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// SignUp registers an email/password account. The display name is the handle
// in public URLs; nothing enforces its uniqueness, the first match wins there.
func (s *Service) SignUp(ctx context.Context, email string, password string, displayName string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return models.User{}, "", err
	}
	if err := ValidatePassword(password); err != nil {
		return models.User{}, "", err
	}
	if err := ValidateDisplayName(displayName); err != nil {
		return models.User{}, "", err
	}

	if _, err := s.Store.GetUser(ctx, ProviderPassword, email); err == nil {
		return models.User{}, "", fmt.Errorf("%w: email already registered", ErrInvalidInput)
	} else if !errors.Is(err, store.ErrItemNotFound) {
		return models.User{}, "", fmt.Errorf("signup lookup failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", err
	}

	user := models.User{
		Email:        email,
		DisplayName:  displayName,
		Provider:     ProviderPassword,
		ProviderId:   email,
		PasswordHash: string(hash),
	}

	createdUser, err := s.Store.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("create user failed: %w", err)
	}

	token, err := s.CreateJWT(createdUser.Id, createdUser.Provider, createdUser.ProviderId)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token generation failed: %w", err)
	}

	return createdUser, token, nil
}

func (s *Service) SignIn(ctx context.Context, email string, password string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.GetUser(ctx, ProviderPassword, email)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.User{}, "", ErrUnauthorized
		}
		return models.User{}, "", fmt.Errorf("signin lookup failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", ErrUnauthorized
	}

	token, err := s.CreateJWT(user.Id, user.Provider, user.ProviderId)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token generation failed: %w", err)
	}

	return user, token, nil
}

// Login handles federated sign-in. CreateUser has ensure semantics, so a
// returning user gets their existing profile back.
func (s *Service) Login(ctx context.Context, provider, code string) (models.User, string, error) {
	user, err := s.HandleOauth(ctx, provider, code)
	if err != nil {
		return models.User{}, "", fmt.Errorf("oauth failed: %w", err)
	}

	createdUser, err := s.Store.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("create user failed: %w", err)
	}

	token, err := s.CreateJWT(createdUser.Id, createdUser.Provider, createdUser.ProviderId)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token generation failed: %w", err)
	}

	return createdUser, token, nil
}

type UserDeletedMessage struct {
	UserId string `json:"userId"`
}

func (s *Service) DeleteUser(ctx context.Context, user models.User) error {
	if err := s.Store.DeleteUser(ctx, user.Provider, user.ProviderId); err != nil {
		return err
	}

	// Async side-effects - return to caller as soon as the store operation is done
	go func() {
		userDeletedMsg := UserDeletedMessage{UserId: user.Id}
		if userDeletedMsgBytes, err := json.Marshal(userDeletedMsg); err == nil {
			s.Cache.Publish(context.Background(), "user-deleted", userDeletedMsgBytes)
		}

		msg := worker.PurgeUserDataMessage{
			UserId:      user.Id,
			DisplayName: user.DisplayName,
		}
		if msgBytes, err := json.Marshal(msg); err == nil {
			s.MQ.Send(context.Background(), string(msgBytes))
		}
	}()

	return nil
}
