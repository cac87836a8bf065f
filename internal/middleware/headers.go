package middleware

import (
	"net/http"
	"strings"
)

// SecureHeaders sets a content security policy that only lets images load
// from our own origin and the configured avatar hosts.
func SecureHeaders(avatarHosts []string) func(http.Handler) http.Handler {
	imgSrc := []string{"'self'", "data:"}
	for _, h := range avatarHosts {
		imgSrc = append(imgSrc, "https://"+h)
	}
	csp := strings.Join([]string{
		"default-src 'self'",
		"img-src " + strings.Join(imgSrc, " "),
		"script-src 'self'",
		"style-src 'self'",
		"connect-src 'self' ws: wss:",
		"frame-ancestors 'none'",
	}, "; ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}
