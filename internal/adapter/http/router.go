package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/adapter/http/handler"
	"github.com/iho/gobank/internal/adapter/http/middleware"
	"github.com/iho/gobank/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	TransferHandler *handler.TransferHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	Logger      zerolog.Logger
	Metrics     *metrics.Metrics        // optional
	Gatherer    prometheus.Gatherer     // serves /metrics when set
	RateLimiter *middleware.RateLimiter // optional
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/account", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		r.Put("/", cfg.AccountHandler.Create)
		r.Get("/{id}", cfg.AccountHandler.Get)
		r.Delete("/{id}", cfg.AccountHandler.Delete)
		r.Get("/{id}/records", cfg.LedgerHandler.ListRecords)
		r.Get("/{id}/limits", cfg.LedgerHandler.Limits)

		r.Post("/deposit/{id}", cfg.AccountHandler.Deposit)
		r.Post("/withdraw/{id}", cfg.AccountHandler.Withdraw)
		r.Post("/transfer/{id}", cfg.TransferHandler.Create)
	})

	return r
}
