package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/web"
	"chatbot-backend/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	chatHandler *handlers.ChatHandler,
	authHandler *handlers.AuthHandler,
	pageHandler *web.PageHandler,
	wsHub *websocket.Hub,
	allowedOrigins []string,
	avatarHosts []string,
	log logrus.FieldLogger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware. The session is attached before the request logger
	// so log lines carry the user.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(sessionAuth.Middleware)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecureHeaders(avatarHosts))

	browserSession := middleware.BrowserSession(sessionAuth.CookieSecure)

	// Sign-in rate limiter (10 req/min per IP)
	signInLimiter := middleware.NewRateLimiter(10, time.Minute, log)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Page ────
	r.Group(func(r chi.Router) {
		r.Use(browserSession)
		r.Get("/", pageHandler.Index)
		r.Post("/theme", pageHandler.ToggleTheme)
	})
	r.Handle("/static/*", web.Static())

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		// ──── Chat (public) ────
		r.Post("/chat", chatHandler.Ask)

		// ──── Auth ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(browserSession)

			r.Group(func(r chi.Router) {
				r.Use(signInLimiter.Middleware)
				r.Get("/google/login", authHandler.GoogleLogin)
				r.Get("/google/callback", authHandler.GoogleCallback)
				r.Post("/google", authHandler.GoogleIDToken)
			})

			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Get("/events", wsHub.HandleAuthEvents)
		})
	})

	return r
}
