// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"seatkeeper/internal/notifications"
	"seatkeeper/internal/seats"
	"seatkeeper/internal/shared/config"
	"seatkeeper/internal/shared/database"
	"seatkeeper/pkg/cache"
	"seatkeeper/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	upstream  seats.Upstream
	publisher notifications.Publisher
}

// NewRouter creates a new router instance. publisher may be nil.
func NewRouter(cfg *config.Config, db *database.DB, upstream seats.Upstream, publisher notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		upstream:  upstream,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		if err := r.setupSeatRoutes(api); err != nil {
			return err
		}
	}
	return nil
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "seatkeeper",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "seatkeeper",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupSeatRoutes configures seat lookup and booking routes
func (r *Router) setupSeatRoutes(rg *gin.RouterGroup) error {
	opts, err := seats.OptionsFromConfig(r.config)
	if err != nil {
		return err
	}

	deps := seats.Dependencies{
		Publisher: r.publisher,
		Logger:    logger.GetDefault(),
	}

	var cacheService cache.Service
	if rdb := r.db.GetRedisClient(); rdb != nil {
		cacheService = cache.NewService(rdb)
		deps.Cache = cacheService
		deps.Guard = seats.NewRedisBookingGuard(rdb)
	}

	seatRepo := seats.NewRepository(r.upstream, cacheService)
	seatService := seats.NewService(seatRepo, opts, deps)
	seatController := seats.NewController(seatService)

	seats.SetupSeatRoutes(rg, seatController, r.config.APIToken)
	return nil
}
