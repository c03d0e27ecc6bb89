package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zatekoja/rarediseaseguide/internal/api/handlers"
	"github.com/zatekoja/rarediseaseguide/internal/api/middleware"
	"github.com/zatekoja/rarediseaseguide/internal/api/routes"
	"github.com/zatekoja/rarediseaseguide/internal/application/services"
	"github.com/zatekoja/rarediseaseguide/internal/bootstrap"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
	"github.com/zatekoja/rarediseaseguide/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)
	logger := observability.GetLogger()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	resolver, err := bootstrap.NewResolver(ctx, cfg, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize disease resolver")
	}
	defer func() {
		if err := resolver.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing cache backend")
		}
	}()

	// Start loading the catalog now so the first search does not pay for it
	resolver.Index.Warm(ctx)

	lookupService := services.NewDiseaseLookupService(resolver.Service)

	// Initialize handlers
	diseaseHandler := handlers.NewDiseaseHandler(resolver.Service, lookupService)
	healthHandler := handlers.NewHealthHandler(resolver.Index)

	rateLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst).
		WithTrustedProxy(cfg.RateLimit.TrustProxy)
	if cfg.RateLimit.IdleTTL > 0 {
		rateLimiter.StartSweeper(ctx, cfg.RateLimit.IdleTTL, cfg.RateLimit.IdleTTL)
	}
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowLocalhost: cfg.Log.Env == "development",
	}

	// Set up router
	router := routes.NewRouter(diseaseHandler, healthHandler, rateLimiter, corsConfig, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}

	logger.Info().Msg("Server stopped")
}
