package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/auricmart/agent-api/internal/handler"
	"github.com/auricmart/agent-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine        *gin.Engine
	sessionH      Handler
	requestH      Handler
	notificationH Handler
	marketH       Handler
	h             *handler.Handler
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	Logger    *zerolog.Logger
}

func NewRouter(
	sessionH Handler,
	requestH Handler,
	notificationH Handler,
	marketH Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(config.Logger))
	engine.Use(middleware.Logger(config.Logger))
	engine.Use(middleware.CORS())
	if config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return &Router{
		engine:        engine,
		sessionH:      sessionH,
		requestH:      requestH,
		notificationH: notificationH,
		marketH:       marketH,
		h:             h,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.h.LivenessCheck)
	r.engine.GET("/metrics", r.h.MetricsHandler)

	v1 := r.engine.Group("/api/v1")
	r.sessionH.RegisterRoutes(v1)
	r.requestH.RegisterRoutes(v1)
	r.notificationH.RegisterRoutes(v1)
	r.marketH.RegisterRoutes(v1)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
