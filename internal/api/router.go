package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/auth-service/internal/api/handler"
	customMiddleware "github.com/Rrens/auth-service/internal/api/middleware"
	"github.com/Rrens/auth-service/internal/config"
	"github.com/Rrens/auth-service/internal/domain"
	"github.com/Rrens/auth-service/internal/logging"
	"github.com/Rrens/auth-service/internal/mailer"
	"github.com/Rrens/auth-service/internal/metrics"
	"github.com/Rrens/auth-service/internal/security"
	"github.com/Rrens/auth-service/internal/service"
)

// Deps are the collaborators the router wires into handlers. Limiter,
// Metrics, Logs and Now are optional.
type Deps struct {
	Users   domain.UserRepository
	Mail    mailer.Sender
	Limiter customMiddleware.Limiter
	Metrics *metrics.Metrics
	Logs    *logging.Logs
	Ready   map[string]handler.Pinger
	Now     func() time.Time
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()
	dev := cfg.Server.IsDevelopment()

	logs := deps.Logs
	if logs == nil {
		logs = &logging.Logs{Request: log.Logger, Error: log.Logger}
	}

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger(logs.Request, logs.Error))
	r.Use(middleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	tokens := security.NewTokenService(security.TokenConfig{
		AccessSecret:  cfg.Auth.AccessTokenSecret,
		RefreshSecret: cfg.Auth.RefreshTokenSecret,
		ResetSecret:   cfg.Auth.ResetTokenSecret,
		AccessTTL:     cfg.Auth.AccessTokenTTL,
		RefreshTTL:    cfg.Auth.RefreshTokenTTL,
		ResetTTL:      cfg.Auth.ResetTokenTTL,
	}, deps.Now)
	hasher := security.NewPasswordHasher(cfg.Auth.BcryptCost)

	// Initialize services
	authService := service.NewAuthService(deps.Users, hasher, tokens, deps.Mail, cfg.Auth.ResetURL).
		WithMetrics(deps.Metrics)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, handler.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
		MaxAge: tokens.RefreshTTL(),
	}, dev)

	authMiddleware := customMiddleware.NewAuthMiddleware(tokens, dev)

	ready := deps.Ready
	if ready == nil {
		ready = map[string]handler.Pinger{"store": deps.Users}
	}

	if deps.Metrics != nil && cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", handler.Root)
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(ready))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)

			r.Group(func(r chi.Router) {
				if deps.Limiter != nil {
					limiter := customMiddleware.NewRateLimitMiddleware(
						deps.Limiter, customMiddleware.LoginLimitMessage, deps.Metrics, dev,
					)
					r.Use(limiter.Limit)
				}
				r.Post("/login", authHandler.Login)
			})

			r.Get("/refresh-token", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
			r.Post("/reset-password", authHandler.SendResetLink)
			r.Put("/reset-password", authHandler.ResetPassword)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Get("/me", authHandler.Me)
			})
		})
	})

	return r
}
