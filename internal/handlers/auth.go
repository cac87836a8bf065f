package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
	"chatbot-backend/internal/services"
)

type authService interface {
	Configured() bool
	BeginSignIn(ctx context.Context, browserSID string) (string, error)
	CompleteSignIn(ctx context.Context, browserSID, state, code string) (string, *models.Session, error)
	SignInWithIDToken(ctx context.Context, browserSID, rawIDToken string) (string, *models.Session, error)
	SignOut(ctx context.Context, browserSID string, sess *models.Session) error
}

type cookieWriter interface {
	SetCookie(w http.ResponseWriter, token string, sess *models.Session)
	ClearCookie(w http.ResponseWriter)
}

// PopupRenderer draws the page the sign-in popup lands on.
type PopupRenderer interface {
	RenderPopup(w http.ResponseWriter, status int, ok bool, message string)
}

type AuthHandler struct {
	authService authService
	cookies     cookieWriter
	popup       PopupRenderer
	log         logrus.FieldLogger
}

func NewAuthHandler(authService authService, cookies cookieWriter, popup PopupRenderer, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		popup:       popup,
		log:         log.WithField("component", "auth_handler"),
	}
}

// GoogleLogin redirects the popup window to Google's consent screen.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.authService.BeginSignIn(r.Context(), middleware.GetBrowserSessionID(r.Context()))
	if err != nil {
		h.popupError(w, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback finishes the popup flow. The page it renders notifies the
// opener and closes itself.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		h.log.WithField("provider_error", providerErr).Info("sign-in cancelled at provider")
		h.popup.RenderPopup(w, http.StatusOK, false, "Sign-in was cancelled.")
		return
	}

	token, sess, err := h.authService.CompleteSignIn(r.Context(), middleware.GetBrowserSessionID(r.Context()), q.Get("state"), q.Get("code"))
	if err != nil {
		h.popupError(w, err)
		return
	}

	h.cookies.SetCookie(w, token, sess)
	h.popup.RenderPopup(w, http.StatusOK, true, "Signed in as "+sess.User.Email+".")
}

// GoogleIDToken signs in with an ID token the client obtained itself.
func (h *AuthHandler) GoogleIDToken(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	token, sess, err := h.authService.SignInWithIDToken(r.Context(), middleware.GetBrowserSessionID(r.Context()), req.IDToken)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.cookies.SetCookie(w, token, sess)
	user := sess.User
	writeJSON(w, http.StatusOK, models.SessionResponse{
		User:      &user,
		Token:     token,
		ExpiresIn: int(time.Until(sess.ExpiresAt).Seconds()),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context(), middleware.GetBrowserSessionID(r.Context()), middleware.GetSession(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.cookies.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// Me reports the current user; user is null when signed out.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp := models.SessionResponse{User: middleware.GetUser(r.Context())}
	if sess := middleware.GetSession(r.Context()); sess != nil {
		resp.ExpiresIn = int(time.Until(sess.ExpiresAt).Seconds())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) popupError(w http.ResponseWriter, err error) {
	var (
		notConfigured *services.NotConfiguredError
		unauthorized  *services.UnauthorizedError
		validation    *services.ValidationError
	)
	switch {
	case errors.As(err, &notConfigured):
		h.popup.RenderPopup(w, http.StatusBadRequest, false, notConfigured.Message)
	case errors.As(err, &unauthorized):
		h.popup.RenderPopup(w, http.StatusUnauthorized, false, unauthorized.Message)
	case errors.As(err, &validation):
		h.popup.RenderPopup(w, http.StatusBadRequest, false, "Sign-in request was incomplete.")
	default:
		h.log.WithError(err).Error("sign-in failed")
		h.popup.RenderPopup(w, http.StatusInternalServerError, false, "Sign-in failed. Please try again.")
	}
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return errorRespWithFields(code, message, nil, r)
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: chimiddleware.GetReqID(r.Context()),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", e.Message, r))
	case *services.NotConfiguredError:
		writeJSON(w, http.StatusBadRequest, errorResp("NOT_CONFIGURED", e.Message, r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
