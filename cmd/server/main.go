package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/database"
	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/logging"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/router"
	"chatbot-backend/internal/services"
	"chatbot-backend/internal/store"
	"chatbot-backend/internal/web"
	"chatbot-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("🚀 Starting Chatbot Backend...")
	log.WithField("env", cfg.Env).Info("✓ Environment variables loaded")
	if cfg.SessionSecretRandom {
		log.Warn("SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
	}

	// ──── Step 2: State Store and Auth Broker ────
	var (
		stateStore store.StateStore
		broker     services.AuthBroker
	)
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("✗ Redis connection failed")
		}
		defer redisClients.Close()
		stateStore = store.NewRedisStore(redisClients.State)
		broker = services.NewRedisAuthBroker(redisClients.PubSub, log)
		log.Info("✓ Redis connected")
	} else {
		stateStore = store.NewMemoryStore()
		broker = services.NewLocalAuthBroker()
		log.Info("✓ Using in-memory sign-in state (single instance)")
	}

	// ──── Step 3: Initialize Gemini Client ────
	prompts, err := services.DefaultPromptCatalog()
	if err != nil {
		log.WithError(err).Fatal("✗ Prompt catalog invalid")
	}

	// Leave generator as a nil interface when there is no key.
	var generator services.Generator
	if cfg.GeminiConfigured() {
		geminiService, err := services.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.WithError(err).Fatal("✗ Gemini client initialization failed")
		}
		defer geminiService.Close()
		generator = geminiService
		log.WithField("model", geminiService.ModelName()).Info("✓ Gemini client initialized")
	} else {
		log.Warn("GEMINI_API_KEY not set; chat will answer with setup guidance")
	}

	// ──── Initialize Services ────
	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure, stateStore, log)
	chatService := services.NewChatService(generator, prompts, log)
	authService := services.NewAuthService(services.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, sessionAuth, stateStore, broker, log)
	if !authService.Configured() {
		log.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set; sign-in is disabled")
	}

	// ──── Initialize Handlers ────
	renderer, err := web.NewRenderer(log)
	if err != nil {
		log.WithError(err).Fatal("✗ Page templates invalid")
	}
	chatHandler := handlers.NewChatHandler(chatService)
	authHandler := handlers.NewAuthHandler(authService, sessionAuth, renderer, log)
	pageHandler := web.NewPageHandler(renderer, authService.Configured(), cfg.CookieSecure)

	// ──── Step 4: Start WebSocket Hub ────
	wsHub := websocket.NewHub(broker, cfg.AllowedOrigins, log)
	log.Info("✓ WebSocket hub started")

	// ──── Step 5: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		chatHandler,
		authHandler,
		pageHandler,
		wsHub,
		cfg.AllowedOrigins,
		cfg.AvatarHosts,
		log,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Infof("✓ Chatbot Backend ready on http://localhost:%s", cfg.Port)
	log.Infof("  API: http://localhost:%s/api/chat", cfg.Port)
	log.Infof("  WS:  ws://localhost:%s/api/auth/events", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server error")
	}
}
