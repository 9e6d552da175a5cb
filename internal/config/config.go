package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/CSCI-GA-2820-FA24-001/shopcarts/pkg/config"
)

// Item addressing schemes for listing a shopcart's items.
const (
	AddressingNested = "nested"
	AddressingFlat   = "flat"
)

// Item search strategies.
const (
	SearchServer = "server"
	SearchScan   = "scan"
)

// Config holds all configuration for the shopcart console.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort          int           `env:"CONSOLE_HTTP_PORT" envDefault:"8090"`
	ReadTimeout       time.Duration `env:"CONSOLE_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"CONSOLE_WRITE_TIMEOUT" envDefault:"30s"`
	CORSAllowedOrigin []string      `env:"CONSOLE_CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Shopcart API
	APIURL         string        `env:"SHOPCART_API_URL" envDefault:"http://localhost:8080"`
	RoutePrefix    string        `env:"SHOPCART_ROUTE_PREFIX" envDefault:"/shopcarts"`
	ItemsPath      string        `env:"SHOPCART_ITEMS_PATH" envDefault:"/items"`
	ItemAddressing string        `env:"ITEM_ADDRESSING" envDefault:"nested"`
	ItemSearch     string        `env:"ITEM_SEARCH_STRATEGY" envDefault:"server"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	APIHealthPath  string        `env:"SHOPCART_API_HEALTH_PATH" envDefault:"/health"`

	// Circuit breaker around the shopcart API
	BreakerEnabled      bool          `env:"BREAKER_ENABLED" envDefault:"true"`
	BreakerTimeout      time.Duration `env:"BREAKER_OPEN_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Rate limiting of console actions, per client address
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation, empty disables)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load console config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants and normalizes path settings.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SHOPCART_API_URL must be an absolute URL, got %q", c.APIURL)
	}

	c.RoutePrefix = normalizePath(c.RoutePrefix)
	if c.RoutePrefix == "" {
		return fmt.Errorf("SHOPCART_ROUTE_PREFIX is required")
	}
	c.ItemsPath = normalizePath(c.ItemsPath)

	switch c.ItemAddressing {
	case AddressingNested:
	case AddressingFlat:
		if c.ItemsPath == "" {
			return fmt.Errorf("SHOPCART_ITEMS_PATH is required when ITEM_ADDRESSING=flat")
		}
	default:
		return fmt.Errorf("ITEM_ADDRESSING must be one of nested, flat; got %q", c.ItemAddressing)
	}
	if c.ItemSearch != SearchServer && c.ItemSearch != SearchScan {
		return fmt.Errorf("ITEM_SEARCH_STRATEGY must be one of server, scan; got %q", c.ItemSearch)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1.0 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %f", c.BreakerFailureRatio)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// normalizePath ensures a single leading slash and no trailing slash.
func normalizePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
