package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seatkeeper/api/routes"
	"seatkeeper/internal/notifications"
	"seatkeeper/internal/reservation"
	"seatkeeper/internal/seats"
	"seatkeeper/internal/shared/config"
	"seatkeeper/internal/shared/database"
	"seatkeeper/internal/shared/middleware"
	"seatkeeper/pkg/logger"
	"seatkeeper/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release) before building the logger, it picks the handler from it
	gin.SetMode(cfg.GinMode)
	appLogger = logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	appLogger.Info("Starting seatkeeper",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	if cfg.IsProduction() && cfg.APIToken == "" {
		appLogger.Warn("API_TOKEN is empty: booking routes are open")
	}

	// Initialize Redis
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("Failed to connect to Redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Preload booking guard scripts
	if rdb := db.GetRedisClient(); rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := seats.NewRedisBookingGuard(rdb).PreloadScripts(ctx); err != nil {
			// Scripts are loaded on first use anyway
			appLogger.Error("Failed to preload Redis Lua scripts", slog.Any("error", err))
		} else {
			appLogger.Info("Redis Lua scripts preloaded for booking guards")
		}
		cancel()
	}

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.GetRedisClient() != nil {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			LookupRequests:  cfg.RateLimit.LookupRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Booking events
	var publisher notifications.Publisher = notifications.NoopPublisher{}
	if cfg.Kafka.Enabled {
		producerCfg := notifications.DefaultKafkaProducerConfig()
		producerCfg.Brokers = cfg.Kafka.Brokers
		producerCfg.Topic = cfg.Kafka.BookedTopic

		kafkaPublisher, err := notifications.NewKafkaPublisher(producerCfg)
		if err != nil {
			appLogger.Error("Failed to initialize Kafka publisher", slog.Any("error", err))
			appLogger.Info("Continuing without booking events")
		} else {
			publisher = kafkaPublisher
			appLogger.Info("Kafka publisher initialized", slog.String("topic", cfg.Kafka.BookedTopic))
		}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing publisher", slog.Any("error", err))
		}
	}()

	upstream := reservation.New(reservation.Config{
		BaseURL:           cfg.Upstream.BaseURL,
		UserAgent:         cfg.Upstream.UserAgent,
		Timeout:           cfg.Upstream.Timeout,
		RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
		Burst:             cfg.Upstream.Burst,
		Logger:            appLogger,
	})

	router, err := setupRouter(cfg, db, upstream, publisher, rateLimiter)
	if err != nil {
		appLogger.Error("Failed to set up routes", slog.Any("error", err))
		os.Exit(1)
	}

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.Bool("redis", db.GetRedisClient() != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, upstream seats.Upstream, publisher notifications.Publisher, rateLimiter *ratelimit.RateLimiter) (*gin.Engine, error) {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Request ids, request logs, panic recovery
	engine.Use(middleware.RequestID(), middleware.RequestLogger(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter := routes.NewRouter(cfg, db, upstream, publisher)
	if err := appRouter.SetupRoutes(engine); err != nil {
		return nil, err
	}

	return engine, nil
}
