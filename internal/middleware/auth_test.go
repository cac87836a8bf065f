package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/logging"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/store"
)

func newTestSessionAuth() *SessionAuth {
	return NewSessionAuth("test-secret", time.Hour, false, store.NewMemoryStore(), logging.Discard())
}

var testUser = models.User{
	ID:          "google-sub-1",
	Email:       "ada@example.com",
	DisplayName: "Ada Lovelace",
	AvatarURL:   "https://lh3.googleusercontent.com/a/ada",
}

func TestSessionAuth_IssueAndParse(t *testing.T) {
	a := newTestSessionAuth()

	token, sess, err := a.IssueToken(testUser)
	require.NoError(t, err)
	require.NotEmpty(t, sess.TokenID)

	parsed, err := a.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, testUser, parsed.User)
	assert.Equal(t, sess.TokenID, parsed.TokenID)
	assert.WithinDuration(t, sess.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestSessionAuth_Expired(t *testing.T) {
	a := newTestSessionAuth()
	token, _, err := a.IssueToken(testUser)
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = a.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionAuth_WrongSecretAndAlgorithm(t *testing.T) {
	a := newTestSessionAuth()
	other := NewSessionAuth("other-secret", time.Hour, false, store.NewMemoryStore(), logging.Discard())

	token, _, err := other.IssueToken(testUser)
	require.NoError(t, err)
	_, err = a.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "jti": "y"})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.Parse(context.Background(), noneToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Parse(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionAuth_Revoke(t *testing.T) {
	ctx := context.Background()
	a := newTestSessionAuth()
	token, sess, err := a.IssueToken(testUser)
	require.NoError(t, err)

	require.NoError(t, a.Revoke(ctx, sess))

	_, err = a.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestMiddleware_AttachesSessionFromCookieOrBearer(t *testing.T) {
	a := newTestSessionAuth()
	token, _, err := a.IssueToken(testUser)
	require.NoError(t, err)

	var seen *models.User
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, "ada@example.com", seen.Email)

	seen = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
}

func TestMiddleware_NeverRejects(t *testing.T) {
	a := newTestSessionAuth()

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credentials", func(r *http.Request) {}},
		{"garbage bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }},
		{"garbage cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "x"}) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				assert.Nil(t, GetSession(r.Context()))
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			tc.setup(req)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.True(t, called)
			assert.Equal(t, http.StatusNoContent, rr.Code)
		})
	}
}

func TestSetAndClearCookie(t *testing.T) {
	a := newTestSessionAuth()
	token, sess, err := a.IssueToken(testUser)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	a.SetCookie(rr, token, sess)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, token, cookies[0].Value)

	rr = httptest.NewRecorder()
	a.ClearCookie(rr)
	cookies = rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
