package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/store"
)

const oauthStateTTL = 10 * time.Minute

// IDTokenValidator checks a Google ID token for audience. idtoken.Validate
// satisfies it.
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// AuthService runs the federated sign-in flow and announces every sign-in and
// sign-out on the AuthBroker.
type AuthService struct {
	oauth    *oauth2.Config
	validate IDTokenValidator
	sessions *middleware.SessionAuth
	state    store.StateStore
	broker   AuthBroker
	log      logrus.FieldLogger
}

func NewAuthService(cfg GoogleConfig, sessions *middleware.SessionAuth, state store.StateStore, broker AuthBroker, log logrus.FieldLogger) *AuthService {
	s := &AuthService{
		validate: idtoken.Validate,
		sessions: sessions,
		state:    state,
		broker:   broker,
		log:      log.WithField("component", "auth"),
	}
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		s.oauth = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return s
}

func (s *AuthService) Configured() bool {
	return s.oauth != nil
}

func (s *AuthService) notConfigured() error {
	return &NotConfiguredError{Message: "Google sign-in is not configured"}
}

// BeginSignIn returns the provider URL the popup should open. The state value
// is bound to the browser session that asked for it.
func (s *AuthService) BeginSignIn(ctx context.Context, browserSID string) (string, error) {
	if !s.Configured() {
		return "", s.notConfigured()
	}
	if browserSID == "" {
		return "", &ValidationError{Fields: map[string]string{"session": "Browser session is required"}}
	}

	state, err := randomState()
	if err != nil {
		return "", err
	}
	if err := s.state.Put(ctx, store.OAuthStatePrefix+state, browserSID, oauthStateTTL); err != nil {
		return "", err
	}

	return s.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

// CompleteSignIn consumes the state, exchanges the code and issues a session.
func (s *AuthService) CompleteSignIn(ctx context.Context, browserSID, state, code string) (string, *models.Session, error) {
	if !s.Configured() {
		return "", nil, s.notConfigured()
	}
	if state == "" || code == "" {
		return "", nil, &ValidationError{Fields: map[string]string{"oauth": "Missing state or code"}}
	}

	boundSID, err := s.state.Take(ctx, store.OAuthStatePrefix+state)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, &UnauthorizedError{Message: "Invalid or expired sign-in state"}
	}
	if err != nil {
		return "", nil, err
	}
	if browserSID != "" && browserSID != boundSID {
		return "", nil, &UnauthorizedError{Message: "Sign-in was started from another browser session"}
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.log.WithError(err).Warn("token exchange failed")
		return "", nil, &UnauthorizedError{Message: "Google token exchange failed"}
	}
	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		return "", nil, &UnauthorizedError{Message: "Google did not return an ID token"}
	}

	return s.signIn(ctx, boundSID, rawIDToken)
}

// SignInWithIDToken serves clients that obtained a Google ID token themselves.
func (s *AuthService) SignInWithIDToken(ctx context.Context, browserSID, rawIDToken string) (string, *models.Session, error) {
	if !s.Configured() {
		return "", nil, s.notConfigured()
	}
	if strings.TrimSpace(rawIDToken) == "" {
		return "", nil, &ValidationError{Fields: map[string]string{"id_token": "ID token is required"}}
	}
	return s.signIn(ctx, browserSID, rawIDToken)
}

func (s *AuthService) signIn(ctx context.Context, browserSID, rawIDToken string) (string, *models.Session, error) {
	payload, err := s.validate(ctx, rawIDToken, s.oauth.ClientID)
	if err != nil {
		s.log.WithError(err).Warn("ID token rejected")
		return "", nil, &UnauthorizedError{Message: "Invalid Google token"}
	}

	user, err := userFromPayload(payload)
	if err != nil {
		return "", nil, err
	}

	token, sess, err := s.sessions.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	s.publish(ctx, browserSID, &sess.User)
	s.log.WithField("user", user.Email).Info("user signed in")
	return token, sess, nil
}

// SignOut revokes sess (when present) and tells every page of the browser
// session that the user is gone.
func (s *AuthService) SignOut(ctx context.Context, browserSID string, sess *models.Session) error {
	if sess != nil {
		if err := s.sessions.Revoke(ctx, sess); err != nil {
			return fmt.Errorf("failed to revoke session: %w", err)
		}
		s.log.WithField("user", sess.User.Email).Info("user signed out")
	}
	s.publish(ctx, browserSID, nil)
	return nil
}

func (s *AuthService) publish(ctx context.Context, browserSID string, user *models.User) {
	if browserSID == "" {
		return
	}
	if err := s.broker.Publish(ctx, browserSID, user); err != nil {
		s.log.WithError(err).Warn("failed to publish auth state")
	}
}

func userFromPayload(p *idtoken.Payload) (models.User, error) {
	claim := func(key string) string {
		v, _ := p.Claims[key].(string)
		return v
	}

	user := models.User{
		ID:          p.Subject,
		Email:       claim("email"),
		DisplayName: claim("name"),
		AvatarURL:   claim("picture"),
	}
	if user.ID == "" || user.Email == "" {
		return models.User{}, &ValidationError{Fields: map[string]string{"google": "Google account missing email"}}
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Email
	}
	return user, nil
}

func randomState() (string, error) {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
