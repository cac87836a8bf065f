package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/store"
)

type contextKey string

const SessionKey contextKey = "session"

const SessionCookieName = "chat_session"

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token has expired")
	ErrTokenRevoked = errors.New("session token has been revoked")
)

type sessionClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SessionAuth issues and reads the signed session token that stands in for
// the identity provider's client-side user object.
type SessionAuth struct {
	Secret       []byte
	TTL          time.Duration
	CookieSecure bool

	revoked store.StateStore
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewSessionAuth(secret string, ttl time.Duration, cookieSecure bool, revoked store.StateStore, log logrus.FieldLogger) *SessionAuth {
	return &SessionAuth{
		Secret:       []byte(secret),
		TTL:          ttl,
		CookieSecure: cookieSecure,
		revoked:      revoked,
		log:          log.WithField("component", "session"),
		now:          time.Now,
	}
}

// IssueToken creates an HS256 token for user.
func (a *SessionAuth) IssueToken(user models.User) (string, *models.Session, error) {
	now := a.now()
	sess := &models.Session{
		User:      user,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(a.TTL),
	}

	claims := sessionClaims{
		Email:   user.Email,
		Name:    user.DisplayName,
		Picture: user.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        sess.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, sess, nil
}

// Parse verifies tokenStr and checks it has not been revoked.
func (a *SessionAuth) Parse(ctx context.Context, tokenStr string) (*models.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	revoked, err := a.revoked.Exists(ctx, store.RevokedTokenPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return &models.Session{
		User: models.User{
			ID:          claims.Subject,
			Email:       claims.Email,
			DisplayName: claims.Name,
			AvatarURL:   claims.Picture,
		},
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke deny-lists the token id until the token would have expired anyway.
func (a *SessionAuth) Revoke(ctx context.Context, sess *models.Session) error {
	ttl := sess.ExpiresAt.Sub(a.now())
	if ttl <= 0 {
		return nil
	}
	return a.revoked.Put(ctx, store.RevokedTokenPrefix+sess.TokenID, "1", ttl)
}

// Middleware attaches the session to the context when a valid token is
// presented. It never rejects a request.
func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := a.Parse(r.Context(), tokenStr)
		if err != nil {
			a.log.WithError(err).Debug("ignoring session token")
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *SessionAuth) SetCookie(w http.ResponseWriter, token string, sess *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(sess.ExpiresAt.Sub(a.now()).Seconds()),
		HttpOnly: true,
		Secure:   a.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *SessionAuth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Bearer header wins over the cookie so API clients can override a browser session.
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// GetSession returns the session attached by Middleware, or nil.
func GetSession(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(SessionKey).(*models.Session)
	return sess
}

// GetUser returns the signed-in user, or nil.
func GetUser(ctx context.Context) *models.User {
	if sess := GetSession(ctx); sess != nil {
		u := sess.User
		return &u
	}
	return nil
}
