package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atul950/NearBuy-ed/pkg/health"
	"github.com/atul950/NearBuy-ed/pkg/middleware"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/service"
)

const serviceName = "discovery-service"

// RouterConfig holds what the router needs besides the service.
type RouterConfig struct {
	TokenValidator    middleware.TokenValidator
	ReviewRPS         float64
	ReviewBurst       int
	CategoriesMaxAge  time.Duration
	PprofEnabled      bool
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all discovery service routes
// registered. ctx bounds background work of the middleware.
func NewRouter(
	ctx context.Context,
	discoveryService *service.DiscoveryService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.PrometheusMetrics("discovery"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	searchHandler := NewSearchHandler(discoveryService, logger)
	productHandler := NewProductHandler(discoveryService, logger)
	shopHandler := NewShopHandler(discoveryService, logger)
	catalogHandler := NewCatalogHandler(discoveryService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.TokenValidator, logger))
		r.Use(middleware.RequestLogger(logger))
		r.Use(ContentTypeJSON)

		r.With(middleware.CacheControl(cfg.CategoriesMaxAge)).Get("/categories", catalogHandler.Categories)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/history", catalogHandler.History)
			r.Delete("/history", catalogHandler.ClearHistory)
		})

		r.Route("/search/sessions", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Post("/", searchHandler.Open)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", searchHandler.Get)
				r.Delete("/", searchHandler.Close)
				r.Put("/filters/{field}", searchHandler.SetFilter)
				r.Delete("/filters", searchHandler.Clear)
				r.Put("/location", searchHandler.Navigate)
				r.Post("/refresh", searchHandler.Refresh)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Post("/{productID}/sessions", productHandler.Open)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", productHandler.Get)
				r.Delete("/", productHandler.Close)
				r.Put("/selection", productHandler.Select)
				r.Post("/refresh", productHandler.Refresh)
				r.With(
					middleware.RequireAuth,
					middleware.RateLimit(ctx, cfg.ReviewRPS, cfg.ReviewBurst, logger),
				).Post("/reviews", productHandler.SubmitReview)
			})
		})

		r.Route("/shops", func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Post("/{shopID}/sessions", shopHandler.Open)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", shopHandler.Get)
				r.Delete("/", shopHandler.Close)
				r.Post("/refresh", shopHandler.Refresh)
			})
		})
	})

	return r
}
