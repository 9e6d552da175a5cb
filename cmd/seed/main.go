// Command seed deletes every shopcart in the shopcart API and creates a fresh
// set, either from a JSON fixture or from the names given as arguments:
//
//	seed -file fixtures.json
//	seed "Alice Cart" "Bob Cart"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/app"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/config"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/dispatcher"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/internal/seed"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/httpclient"
	"github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/logger"
)

func main() {
	file := flag.String("file", "", "JSON fixture with shopcarts and items")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("shopcart-seed", cfg.LogLevel)

	if err := run(cfg, log, *file, flag.Args()); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, file string, names []string) error {
	fixture, err := loadFixture(file, names)
	if err != nil {
		return err
	}

	client, err := httpclient.New(httpclient.Config{
		BaseURL:         cfg.APIURL,
		Timeout:         cfg.HTTPTimeout,
		MaxConnsPerHost: 4,
	})
	if err != nil {
		return fmt.Errorf("create shopcart api client: %w", err)
	}
	d, err := dispatcher.New(client, client, app.Routes(cfg), log)
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	created, err := seed.New(d, log).Load(ctx, fixture)
	if err != nil {
		return err
	}
	for _, c := range created {
		fmt.Printf("%d\t%s\t%d items\n", c.ID, c.Name, len(c.Items))
	}
	return nil
}

func loadFixture(file string, names []string) (seed.Fixture, error) {
	if file == "" {
		return seed.FixtureFromNames(names...), nil
	}
	if len(names) > 0 {
		return seed.Fixture{}, fmt.Errorf("use either -file or shopcart names, not both")
	}
	f, err := os.Open(file)
	if err != nil {
		return seed.Fixture{}, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return seed.ReadFixture(f)
}
