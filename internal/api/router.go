package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/hugh/flowboard/internal/api/handlers"
	"github.com/hugh/flowboard/internal/api/middleware"
	"github.com/hugh/flowboard/internal/auth"
	"github.com/hugh/flowboard/internal/kanban"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	AsynqClient    *asynq.Client
	BaseURL        string
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	kanbanService := kanban.NewService(cfg.DB, cfg.Logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.AsynqClient, cfg.BaseURL, cfg.Logger)
	boardHandler := handlers.NewBoardHandler(kanbanService)
	laneHandler := handlers.NewLaneHandler(kanbanService)
	cardHandler := handlers.NewCardHandler(kanbanService)
	categoryHandler := handlers.NewCategoryHandler(kanbanService)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Get("/auth/verify/{token}", authHandler.VerifyEmail)
		r.Post("/auth/resend-verification", authHandler.ResendVerification)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			// User endpoint
			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				userID := middleware.GetUserID(r.Context())
				user, err := cfg.AuthService.GetUserByID(r.Context(), userID)
				if err != nil {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, user)
			})

			// Current-board view
			r.Get("/board", boardHandler.Current)

			// Boards endpoints
			r.Route("/boards", func(r chi.Router) {
				r.Get("/", boardHandler.List)
				r.Post("/", boardHandler.Create)
				r.Get("/{id}", boardHandler.Get)
				r.Put("/{id}", boardHandler.Update)
				r.Delete("/{id}", boardHandler.Delete)
				r.Post("/{id}/switch", boardHandler.Switch)
				r.Post("/{id}/delete", boardHandler.Delete) // form-friendly alias
			})

			// Lanes endpoints
			r.Route("/lanes", func(r chi.Router) {
				r.Post("/", laneHandler.Create)
				r.Put("/reorder", laneHandler.Reorder)
				r.Delete("/{id}", laneHandler.Delete)
			})

			// Cards endpoints
			r.Route("/cards", func(r chi.Router) {
				r.Post("/", cardHandler.Create)
				r.Put("/reorder", cardHandler.Reorder)
				r.Get("/{id}", cardHandler.Get)
				r.Post("/{id}/update", cardHandler.Update)
				r.Put("/{id}/move", cardHandler.Move)
				r.Put("/{id}", cardHandler.Move) // older drag-drop clients
				r.Delete("/{id}", cardHandler.Delete)
			})

			// Categories endpoints (global, no ownership scoping)
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categoryHandler.List)
				r.Post("/", categoryHandler.Create)
				r.Delete("/{id}", categoryHandler.Delete)
			})
		})
	})

	return &Router{r}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
