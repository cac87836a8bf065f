package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/logging"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/services"
	"chatbot-backend/internal/store"
	"chatbot-backend/internal/web"
	"chatbot-backend/internal/websocket"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logging.Discard()
	state := store.NewMemoryStore()
	broker := services.NewLocalAuthBroker()

	sessionAuth := middleware.NewSessionAuth("secret", time.Hour, false, state, log)
	prompts, err := services.DefaultPromptCatalog()
	require.NoError(t, err)
	renderer, err := web.NewRenderer(log)
	require.NoError(t, err)
	authService := services.NewAuthService(services.GoogleConfig{}, sessionAuth, state, broker, log)

	return New(
		sessionAuth,
		handlers.NewChatHandler(services.NewChatService(nil, prompts, log)),
		handlers.NewAuthHandler(authService, sessionAuth, renderer, log),
		web.NewPageHandler(renderer, authService.Configured(), false),
		websocket.NewHub(broker, []string{"http://localhost:3000"}, log),
		[]string{"http://localhost:3000"},
		[]string{"lh3.googleusercontent.com"},
		log,
	)
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
}

func TestChatWithoutKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "GEMINI_API_KEY")
}

func TestChatUnreadableBodyWithoutKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`not json`))
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "GEMINI_API_KEY")
}

func TestValidationErrorCarriesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(`not json`))
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"request_id":"`)
	assert.NotContains(t, rr.Body.String(), `"request_id":""`)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestIndexSetsBrowserSession(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please sign in to start chatting.")

	var found bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.BrowserSessionCookie {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSignInNotConfigured(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(`{"id_token":"x"}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_CONFIGURED")
}

func TestMeSignedOut(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user":null}`, rr.Body.String())
}
