package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/DamnnnMat/InvoiceChaser/internal/handler"
	cronHandler "github.com/DamnnnMat/InvoiceChaser/internal/handler/cron"
	invoiceHandler "github.com/DamnnnMat/InvoiceChaser/internal/handler/invoice"
	templateHandler "github.com/DamnnnMat/InvoiceChaser/internal/handler/template"
	trackHandler "github.com/DamnnnMat/InvoiceChaser/internal/handler/track"
	"github.com/DamnnnMat/InvoiceChaser/internal/middleware"
)

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	healthH   *handler.HealthHandler
	cronH     *cronHandler.Handler
	trackH    *trackHandler.Handler
	invoiceH  *invoiceHandler.Handler
	templateH *templateHandler.Handler
	config    Config
	metrics   *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func newRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "invoicechaser_request_duration_seconds",
			Help:    "HTTP request latency by path and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicechaser_requests_total",
			Help: "HTTP requests by path, method and status",
		}, []string{"path", "method", "status"}),
	}
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH *handler.HealthHandler,
	cronH *cronHandler.Handler,
	trackH *trackHandler.Handler,
	invoiceH *invoiceHandler.Handler,
	templateH *templateHandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	return &Router{
		engine:    gin.New(),
		auth:      auth,
		healthH:   healthH,
		cronH:     cronH,
		trackH:    trackH,
		invoiceH:  invoiceH,
		templateH: templateH,
		config:    config,
		metrics:   newRouterMetrics(),
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Setup() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger())
	r.engine.Use(r.observe())

	r.engine.GET("/healthz", r.healthH.Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The pixel endpoint is public and must answer every request with the
	// same 200 regardless of token validity, so no auth or limiter here.
	r.engine.GET("/track/open", r.trackH.Open)

	api := r.engine.Group("/api/v1")

	cron := api.Group("/cron")
	cron.Use(r.auth.AuthenticateCron())
	cron.GET("/reminders", r.cronH.ProcessReminders)

	limiter := middleware.NewRateLimiter(r.config.RateLimit, r.config.RateBurst)
	authed := api.Group("")
	authed.Use(limiter.RateLimit())
	authed.Use(r.auth.Authenticate())
	r.invoiceH.RegisterRoutes(authed)
	r.templateH.RegisterRoutes(authed)
}

func (r *Router) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		r.metrics.requestDuration.WithLabelValues(path, c.Request.Method).
			Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(path, c.Request.Method,
			strconv.Itoa(c.Writer.Status())).Inc()
	}
}
