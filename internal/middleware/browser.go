package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	BrowserSessionKey    contextKey = "browser_session"
	BrowserSessionCookie            = "chat_sid"
	browserSessionMaxAge            = 30 * 24 * time.Hour
)

// BrowserSession makes sure every browser carries a random id. The popup
// sign-in window and the chat page share it, which is how the page learns
// about a sign-in that completed in the popup.
func BrowserSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(BrowserSessionCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     BrowserSessionCookie,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(browserSessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), BrowserSessionKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetBrowserSessionID returns the id set by BrowserSession, or "".
func GetBrowserSessionID(ctx context.Context) string {
	sid, _ := ctx.Value(BrowserSessionKey).(string)
	return sid
}
