package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/config"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/console"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"
	handler "github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/handler/http"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/health"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httpclient"
	pkgmiddleware "github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/middleware"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/tracing"
)

// initTracer is replaced in tests.
var initTracer = tracing.InitTracer

// App wires together all dependencies and runs the shopcart console.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	limiter        *pkgmiddleware.RateLimiter
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance. The console holds no state of
// its own; its only dependency is the shopcart API at cfg.APIURL.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := initTracer(ctx, tracing.Config{
		ServiceName:    "shopcart-console",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	releaseTracer := func() {
		if err := tracerShutdown(context.Background()); err != nil {
			logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	api, err := httpclient.New(httpclient.Config{
		BaseURL:         cfg.APIURL,
		Timeout:         cfg.HTTPTimeout,
		MaxConnsPerHost: 16,
	})
	if err != nil {
		releaseTracer()
		return nil, fmt.Errorf("create shopcart api client: %w", err)
	}

	var doer httpclient.Doer = api
	if cfg.BreakerEnabled {
		cbCfg := httpclient.DefaultCircuitBreakerConfig("shopcart-api")
		cbCfg.Timeout = cfg.BreakerTimeout
		cbCfg.FailureRatio = cfg.BreakerFailureRatio
		cbCfg.MinRequests = cfg.BreakerMinRequests
		doer = httpclient.NewCircuitBreakerClient(api, cbCfg, logger)
	}

	d, err := dispatcher.New(api, doer, Routes(cfg), logger)
	if err != nil {
		releaseTracer()
		return nil, fmt.Errorf("create dispatcher: %w", err)
	}

	consoleHandler, err := handler.NewConsoleHandler(console.New(d, logger), logger)
	if err != nil {
		releaseTracer()
		return nil, err
	}

	// Readiness follows the shopcart API's own health endpoint.
	healthHandler := health.NewHandler(3 * time.Second)
	healthHandler.Register("shopcart_api", health.HTTPChecker(api, cfg.APIHealthPath))

	limiter := pkgmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)

	router := handler.NewRouter(handler.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigin,
		PprofAllowedCIDRs:  cfg.PprofAllowedCIDRs,
		RequestTimeout:     cfg.WriteTimeout,
	}, consoleHandler, healthHandler, limiter, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		httpServer:     httpServer,
		limiter:        limiter,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Routes maps the API settings of cfg onto dispatcher routes.
func Routes(cfg *config.Config) dispatcher.Routes {
	routes := dispatcher.Routes{
		Prefix:     cfg.RoutePrefix,
		ItemsPath:  cfg.ItemsPath,
		Addressing: dispatcher.Nested,
		Search:     dispatcher.SearchServer,
	}
	if cfg.ItemAddressing == config.AddressingFlat {
		routes.Addressing = dispatcher.Flat
	}
	if cfg.ItemSearch == config.SearchScan {
		routes.Search = dispatcher.SearchScan
	}
	return routes
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("shopcart_api", a.cfg.APIURL),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application in order:
// 1. HTTP server (drain in-flight requests)
// 2. Rate limiter eviction loop
// 3. Tracer (flush pending spans from drained requests)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.limiter.Close()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
