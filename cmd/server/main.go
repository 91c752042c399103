package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/auth-service/internal/api"
	"github.com/Rrens/auth-service/internal/api/handler"
	"github.com/Rrens/auth-service/internal/config"
	"github.com/Rrens/auth-service/internal/logging"
	"github.com/Rrens/auth-service/internal/mailer"
	"github.com/Rrens/auth-service/internal/metrics"
	"github.com/Rrens/auth-service/internal/repository/redis"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := false
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		fmt.Println("Warning: .env file not found in any standard location")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logs, err := logging.Setup(cfg.Logging, cfg.Server.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to setup logging")
	}
	defer logs.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("env", cfg.Server.Env).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting auth server")

	ctx := context.Background()

	// Initialize user store
	st, err := openStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to user store")
	}
	defer st.close()

	ready := map[string]handler.Pinger{"store": st.users}
	deps := api.Deps{
		Users: st.users,
		Logs:  logs,
		Ready: ready,
	}

	// Initialize Redis backed login limiter
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		deps.Limiter = redis.NewRateLimiter(redisClient, "login", cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)
		ready["redis"] = redisClient
	} else {
		log.Warn().Msg("Redis disabled, login attempts are not rate limited")
	}

	// Initialize mail transport
	deps.Mail, err = mailer.New(cfg.Mail)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize mailer")
	}

	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	// Initialize router
	router := api.NewRouter(cfg, deps)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
