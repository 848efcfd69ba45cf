package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/stagnes/parish-hub/internal/api/handlers"
	"github.com/stagnes/parish-hub/internal/api/middleware"
	"github.com/stagnes/parish-hub/internal/auth"
	"github.com/stagnes/parish-hub/internal/database/models"
	"github.com/stagnes/parish-hub/internal/importer"
	"github.com/stagnes/parish-hub/internal/provisioning"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Provisioning   *provisioning.Service
	Importer       *importer.Importer
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

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Provisioning)
	userHandler := handlers.NewUserHandler(cfg.DB, cfg.Provisioning)
	guildHandler := handlers.NewGuildHandler(cfg.DB)
	documentHandler := handlers.NewDocumentHandler(cfg.DB)
	dashboardHandler := handlers.NewDashboardHandler(cfg.DB)
	profileHandler := handlers.NewProfileHandler(cfg.DB, cfg.AuthService)
	importHandler := handlers.NewImportHandler(cfg.Importer)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/otp", authHandler.RequestOTP)
		r.Post("/auth/verify-otp", authHandler.VerifyOTP)
		r.Post("/auth/set-password", authHandler.SetPassword)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/me", profileHandler.Me)
			r.Route("/users/me/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/", profileHandler.UpdateProfile)
			})

			r.Get("/documents", documentHandler.List)
			r.Get("/dashboard/summary", dashboardHandler.Summary)

			// Admin endpoints
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))

				r.Route("/users", func(r chi.Router) {
					r.Get("/", userHandler.List)
					r.Post("/", userHandler.Create)
					r.Put("/{userID}", userHandler.Update)
					r.Delete("/{userID}", userHandler.Delete)
					r.Post("/{userID}/resend-setup", userHandler.ResendSetup)
				})

				r.Post("/upload-users", importHandler.UploadUsers)

				r.Route("/guilds", func(r chi.Router) {
					r.Get("/", guildHandler.List)
					r.Post("/", guildHandler.Create)
					r.Put("/{guildID}", guildHandler.Update)
					r.Delete("/{guildID}", guildHandler.Delete)
				})
			})
		})
	})

	return &Router{r}
}
