package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/prescription-api/internal/middleware"
	"github.com/jwalitptl/prescription-api/pkg/logger"
)

// Handler is anything that can attach its routes to the versioned API group.
type Handler interface {
	RegisterRoutes(group *gin.RouterGroup)
}

type Config struct {
	RateLimitEnabled  bool
	RateLimitRPS      float64
	RateLimitBurst    int
	CORS              middleware.CORSConfig
	MaxBodySize       int64
	PrometheusEnabled bool
	MetricsPath       string
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Router struct {
	engine  *gin.Engine
	config  Config
	logger  *logger.Logger
	metrics *routerMetrics
}

func New(cfg Config, log *logger.Logger, handlers ...Handler) *Router {
	engine := gin.New()

	r := &Router{
		engine: engine,
		config: cfg,
		logger: log,
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.CORS(cfg.CORS))
	engine.Use(middleware.SecurityHeaders(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: cfg.MaxBodySize}))

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	if cfg.PrometheusEnabled {
		r.metrics = initRouterMetrics("prescription_api")
		engine.Use(r.metricsMiddleware())

		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	api := engine.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
