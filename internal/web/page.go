package web

import (
	"net/http"
	"time"

	"chatbot-backend/internal/middleware"
)

const (
	pageTitle      = "AI-Powered Chatbot"
	themeCookieAge = 365 * 24 * time.Hour
)

type PageHandler struct {
	renderer      *Renderer
	signInEnabled bool
	cookieSecure  bool
}

func NewPageHandler(renderer *Renderer, signInEnabled, cookieSecure bool) *PageHandler {
	return &PageHandler{renderer: renderer, signInEnabled: signInEnabled, cookieSecure: cookieSecure}
}

// Index renders the chat page for whoever the session middleware found.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := IndexData{
		Title:         pageTitle,
		Theme:         themeFromRequest(r),
		SignInEnabled: h.signInEnabled,
	}
	if user := middleware.GetUser(r.Context()); user != nil {
		data.SignedIn = true
		data.Email = user.Email
		data.AvatarURL = user.AvatarURL
	}
	h.renderer.RenderIndex(w, data)
}

// ToggleTheme flips the theme cookie for clients without script.
func (h *PageHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := ThemeDark
	if themeFromRequest(r) == ThemeDark {
		next = ThemeLight
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int(themeCookieAge.Seconds()),
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func themeFromRequest(r *http.Request) string {
	if c, err := r.Cookie(ThemeCookie); err == nil && c.Value == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}
