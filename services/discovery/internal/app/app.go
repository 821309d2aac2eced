package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/atul950/NearBuy-ed/pkg/database"
	"github.com/atul950/NearBuy-ed/pkg/health"
	"github.com/atul950/NearBuy-ed/pkg/httpclient"
	pkgkafka "github.com/atul950/NearBuy-ed/pkg/kafka"
	"github.com/atul950/NearBuy-ed/pkg/middleware"
	"github.com/atul950/NearBuy-ed/pkg/tracing"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/cache"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/catalog"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/catalog/memory"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/config"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/event"
	handler "github.com/atul950/NearBuy-ed/services/discovery/internal/handler/http"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/repository/postgres"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/service"
	"github.com/atul950/NearBuy-ed/services/discovery/migrations"
)

const sweepInterval = time.Minute

// App wires together all dependencies and runs the discovery service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	stopBackground context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()
	validator := middleware.NewHMACValidator(cfg.JWTSecret)

	cat, err := newCatalog(cfg, validator, healthHandler, logger)
	if err != nil {
		a.closeResources()
		return nil, err
	}
	deps := service.Dependencies{
		Catalog:    cat,
		SessionTTL: cfg.SessionIdleTTL,
	}

	// Category cache. An unreachable Redis degrades to direct catalog reads.
	if cfg.CategoryCacheEnabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, category cache disabled",
				slog.String("addr", cfg.Redis.Addr()),
				slog.String("error", err.Error()),
			)
		} else {
			a.redis = client
			logger.Info("connected to Redis", slog.String("addr", cfg.Redis.Addr()))
			categories := cache.NewCategories(client, cat, cfg.CategoryCacheTTL, logger)
			deps.Categories = categories
			healthHandler.RegisterOptional("redis", categories.Ping)
		}
	}

	if cfg.HistoryEnabled {
		if err := a.initHistory(ctx, &deps, healthHandler); err != nil {
			a.closeResources()
			return nil, err
		}
	}

	discoveryService := service.NewDiscoveryService(deps, logger)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	a.stopBackground = stopBackground
	discoveryService.RunSweepers(bgCtx, sweepInterval)

	router := handler.NewRouter(bgCtx, discoveryService, healthHandler, handler.RouterConfig{
		TokenValidator:    validator,
		ReviewRPS:         cfg.RateLimitRPS,
		ReviewBurst:       cfg.RateLimitBurst,
		CategoriesMaxAge:  cfg.CategoryCacheTTL,
		PprofEnabled:      cfg.PprofEnabled,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// newCatalog builds the configured catalog backend and registers its
// health check.
func newCatalog(
	cfg *config.Config,
	validator middleware.TokenValidator,
	healthHandler *health.Handler,
	logger *slog.Logger,
) (catalog.Catalog, error) {
	switch cfg.CatalogBackend {
	case config.CatalogMemory:
		cat := memory.New(memory.WithReviewer(func(token string) (string, error) {
			claims, err := validator(token)
			if err != nil {
				return "", err
			}
			if claims.Name != "" {
				return claims.Name, nil
			}
			return claims.UserID, nil
		}))
		if err := memory.Seed(cat); err != nil {
			return nil, fmt.Errorf("seed memory catalog: %w", err)
		}
		logger.Info("using in-memory catalog")
		return cat, nil
	default:
		httpCfg := httpclient.DefaultConfig()
		httpCfg.Timeout = cfg.CatalogTimeout
		httpCfg.MaxRetries = cfg.CatalogMaxRetries
		httpCfg.UserAgent = "discovery-service/0.1"
		breaker := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpCfg),
			httpclient.DefaultCircuitBreakerConfig("catalog-service"),
			logger,
		)
		client := catalog.NewClient(breaker, cfg.CatalogServiceURL, logger)
		healthHandler.RegisterOptional("catalog", client.Ping)
		logger.Info("using catalog service", slog.String("url", cfg.CatalogServiceURL))
		return client, nil
	}
}

// initHistory connects the search history store and the event producer.
func (a *App) initHistory(ctx context.Context, deps *service.Dependencies, healthHandler *health.Handler) error {
	cfg, logger := a.cfg, a.logger

	pool, err := database.NewPostgresPool(ctx, &cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.Postgres.Host),
		slog.Int("port", cfg.Postgres.Port),
		slog.String("database", cfg.Postgres.DBName),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "discovery"); err != nil {
		return fmt.Errorf("register pool metrics: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	deps.History = postgres.NewHistoryRepository(pool, database.QueryTracer{
		SlowThreshold: cfg.SlowQueryThreshold,
		Logger:        logger,
	})
	deps.Events = event.NewProducer(a.producer, logger)

	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterOptional("kafka", a.producer.Ping)
	return nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown drains in-flight requests, then stops background work and closes
// the remaining resources.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.stopBackground != nil {
		a.stopBackground()
	}

	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases every connection opened so far and flushes spans.
func (a *App) closeResources() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	return errors.Join(errs...)
}
