package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mfarouk/go-account-service/internal/config"
	"github.com/mfarouk/go-account-service/internal/database"
	"github.com/mfarouk/go-account-service/internal/handler"
	"github.com/mfarouk/go-account-service/internal/middleware"
	"github.com/mfarouk/go-account-service/internal/repository"
	"github.com/mfarouk/go-account-service/internal/service"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(context.Background(), cfg.DbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Wire repositories, services, and handlers
	userRepo := repository.NewUserRepository(db)
	issuer := service.NewTokenIssuer(userRepo, cfg.JwtSecret)
	throttle := service.NewLoginThrottle(cfg.MaxLoginAttempts, cfg.LoginTimeout)
	authService := service.NewAuthService(userRepo, issuer, throttle)
	adminService := service.NewAdminService(userRepo, cfg.AdminKeyPrefix)
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(adminService)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RateLimiter())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Credential endpoints with strict per-IP limits
	r.Group(func(r chi.Router) {
		r.Use(middleware.StrictRateLimiter())
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
	})

	r.Post("/auth/account_info", authHandler.AccountInfo)

	// Session-guarded routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionGuard(authService))
		r.Get("/account", authHandler.Account)
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/reissue", authHandler.Reissue)
	})

	// Admin routes, gated by the derived capability key only
	r.Post("/admin/update_user", adminHandler.UpdateUser)
	r.Post("/admin/activate_account", adminHandler.ActivateAccount)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server is shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited properly")
}
