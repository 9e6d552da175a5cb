package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/app"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/config"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/logger"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("shopcart-console", cfg.LogLevel)
	log.Info("starting shopcart console",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("shopcart_api", cfg.APIURL),
		slog.String("route_prefix", cfg.RoutePrefix),
		slog.String("item_addressing", cfg.ItemAddressing),
		slog.String("item_search", cfg.ItemSearch),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create a context that is cancelled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run the application. This blocks until shutdown.
	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("shopcart console stopped")
}
