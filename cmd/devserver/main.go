// Package main starts the local development stand-in for the Apartey
// backend API, setting up configuration, logging, in-memory repositories,
// services, and handlers.
package main

import (
	"cmp"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/apartey/apartey-client/internal/config"
	"github.com/apartey/apartey-client/internal/logger"
	"github.com/apartey/apartey-client/internal/repository"
	"github.com/apartey/apartey-client/internal/server/handler/http"
	"github.com/apartey/apartey-client/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// In-memory repositories; the dev server owns no durable state.
	userRepo := repository.NewMemoryUserRepository()
	reviewRepo := repository.NewMemoryReviewRepository()

	// Business-logic services.
	authService := service.NewAuthService(userRepo, options.JWTSecret)
	reviewService := service.NewReviewService(reviewRepo)

	// HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService}
	userHandler := &http.UserHandler{AuthService: authService}
	reviewHandler := &http.ReviewHandler{ReviewService: reviewService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, userHandler, reviewHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting dev API server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start dev API server", zap.Error(err))
	}
}
