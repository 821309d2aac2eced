package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/atul950/NearBuy-ed/pkg/config"
	"github.com/atul950/NearBuy-ed/pkg/database"
	"github.com/atul950/NearBuy-ed/pkg/tracing"
)

// Catalog backends.
const (
	CatalogHTTP   = "http"
	CatalogMemory = "memory"
)

// Config holds all configuration for the discovery service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"DISCOVERY_HTTP_PORT" envDefault:"8020"`

	// Catalog service (http or memory)
	CatalogBackend    string        `env:"CATALOG_BACKEND" envDefault:"http"`
	CatalogServiceURL string        `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:5000"`
	CatalogTimeout    time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
	CatalogMaxRetries int           `env:"CATALOG_MAX_RETRIES" envDefault:"2"`

	// Bearer tokens issued by the auth service
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// View sessions
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`

	// Category cache (Redis)
	CategoryCacheEnabled bool          `env:"CATEGORY_CACHE_ENABLED" envDefault:"true"`
	CategoryCacheTTL     time.Duration `env:"CATEGORY_CACHE_TTL" envDefault:"10m"`

	// Review submission rate limit, per user
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`

	// Search history (Postgres + Kafka)
	HistoryEnabled     bool          `env:"HISTORY_ENABLED" envDefault:"false"`
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`

	Postgres database.PostgresConfig
	Redis    database.RedisConfig
	Tracing  tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load discovery config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Tracing.ServiceName = "discovery-service"
	cfg.Tracing.Environment = cfg.Environment
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.CatalogBackend {
	case CatalogHTTP:
		u, err := url.Parse(c.CatalogServiceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid CATALOG_SERVICE_URL: %q", c.CatalogServiceURL)
		}
	case CatalogMemory:
	default:
		return fmt.Errorf("CATALOG_BACKEND must be %q or %q, got %q", CatalogHTTP, CatalogMemory, c.CatalogBackend)
	}
	if c.CatalogTimeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive, got %s", c.CatalogTimeout)
	}
	if c.CatalogMaxRetries < 0 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must not be negative, got %d", c.CatalogMaxRetries)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL)
	}
	if c.CategoryCacheEnabled && c.CategoryCacheTTL <= 0 {
		return fmt.Errorf("CATEGORY_CACHE_TTL must be positive, got %s", c.CategoryCacheTTL)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit: %g rps, burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.HistoryEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when HISTORY_ENABLED is set")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	return nil
}
