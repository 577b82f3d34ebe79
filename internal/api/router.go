package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/ocha-app/ocha/internal/api/handler"
	customMiddleware "github.com/ocha-app/ocha/internal/api/middleware"
	"github.com/ocha-app/ocha/internal/config"
	"github.com/ocha-app/ocha/internal/llm"
	"github.com/ocha-app/ocha/internal/llm/gemini"
	"github.com/ocha-app/ocha/internal/llm/openai"
	"github.com/ocha-app/ocha/internal/repository"
	"github.com/ocha-app/ocha/internal/repository/redis"
	"github.com/ocha-app/ocha/internal/security"
	"github.com/ocha-app/ocha/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, store *repository.Store, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	verifier := security.NewGoogleVerifier(cfg.Auth.GoogleClientID)

	// Initialize rate limiter
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	// Initialize LLM Router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	} else {
		log.Warn().Msg("Gemini API Key is empty, skipping registration")
	}

	// Initialize services
	authService := service.NewAuthService(verifier, jwtManager, cfg.Auth.AllowedEmailList())
	threadService := service.NewThreadService(store.Threads, store.Messages)
	chatService := service.NewChatService(store.Threads, store.Messages, llmRouter, cfg.Chat)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	threadHandler := handler.NewThreadHandler(threadService)
	chatHandler := handler.NewChatHandler(chatService)
	healthHandler := handler.NewHealthHandler(store)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	// Health check
	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		r.Post("/auth/google", authHandler.Google)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/verify", authHandler.Verify)

			// Completion engines
			r.Get("/ai/providers", handler.ListProviders(llmRouter))

			// Thread routes
			r.Route("/threads", func(r chi.Router) {
				r.Get("/", threadHandler.List)
				r.Post("/", threadHandler.Create)

				r.Route("/{threadID}", func(r chi.Router) {
					r.Get("/", threadHandler.Get)
					r.Patch("/", threadHandler.Update)
					r.Delete("/", threadHandler.Delete)
					r.Post("/messages", threadHandler.AddMessage)
				})
			})

			// Chat streaming
			r.Group(func(r chi.Router) {
				r.Use(rateLimitMiddleware.Limit)
				r.Post("/ai/chat", chatHandler.Chat)
			})
		})
	})

	return r
}
