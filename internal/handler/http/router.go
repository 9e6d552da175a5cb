package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/health"
	pkgmiddleware "github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/middleware"
)

const serviceName = "shopcart-console"

// RouterConfig carries the settings NewRouter needs.
type RouterConfig struct {
	CORSAllowedOrigins []string
	PprofAllowedCIDRs  []string
	RequestTimeout     time.Duration
}

// NewRouter creates a chi router with the console page, action endpoints,
// health probes and metrics.
func NewRouter(
	cfg RouterConfig,
	consoleHandler *ConsoleHandler,
	healthHandler *health.Handler,
	limiter *pkgmiddleware.RateLimiter,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", pkgmiddleware.CorrelationHeader},
		ExposedHeaders:   []string{pkgmiddleware.CorrelationHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(pkgmiddleware.RequestLogging(logger))
	r.Use(pkgmiddleware.PrometheusMetrics(serviceName))
	r.Use(pkgmiddleware.Tracing(serviceName))
	r.Use(pkgmiddleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	r.Handle("/metrics", promhttp.Handler())

	pkgmiddleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	// Console
	r.Group(func(r chi.Router) {
		r.Use(pkgmiddleware.NoStore)

		r.Get("/", consoleHandler.Page)

		// Both action endpoints draw on the same per-client bucket.
		r.With(limiter.HandlerWith(http.HandlerFunc(consoleHandler.FormLimited))).
			Post(formActionPrefix+"/{action}", consoleHandler.FormAction)
		r.With(limiter.Handler).
			Post(jsonActionPrefix+"/{action}", consoleHandler.JSONAction)
	})

	return r
}
