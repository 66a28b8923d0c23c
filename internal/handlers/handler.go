package handlers

import (
	"time"

	"roastlog/internal/logger"
	"roastlog/internal/metrics"
	"roastlog/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options carries optional collaborators. The zero value is usable.
type Options struct {
	Metrics *metrics.Metrics
	// LiveInterval is the default push period of /live streams.
	LiveInterval time.Duration
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services     *service.Service
	log          *logger.Logger
	metrics      *metrics.Metrics
	liveInterval time.Duration
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if opts.LiveInterval <= 0 {
		opts.LiveInterval = defaultInterval
	}
	return &Handler{
		services:     services,
		log:          log,
		metrics:      opts.Metrics,
		liveInterval: opts.LiveInterval,
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	useRequestValidator()

	router := gin.New()
	router.Use(gin.Recovery())
	if h.log != nil {
		router.Use(requestLogger(h.log))
	}
	if h.metrics != nil {
		router.Use(h.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerRoastRoutes(api)
	}
}

func (h *Handler) registerRoastRoutes(api *gin.RouterGroup) {
	roasts := api.Group("/roasts")
	{
		roasts.POST("", h.createRoast)
		roasts.GET("", h.listRoasts)
		roasts.GET("/:id", h.getRoast)
		roasts.PATCH("/:id", h.updateRoast)
		roasts.DELETE("/:id", h.deleteRoast)

		roasts.GET("/:id/events", h.listEvents)
		roasts.POST("/:id/events", h.appendEvent)
		roasts.PUT("/:id/events/:eventId", h.editEvent)
		roasts.DELETE("/:id/events/:eventId", h.deleteEvent)

		roasts.GET("/:id/summary", h.getSummary)
		roasts.GET("/:id/curve", h.getCurve)
		// WebSocket upgrade on the same port
		roasts.GET("/:id/live", h.liveConnect)
	}
}
