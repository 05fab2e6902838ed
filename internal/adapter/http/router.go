package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/fundledger/internal/adapter/http/handler"
	"github.com/iho/fundledger/internal/adapter/http/middleware"
	"github.com/iho/fundledger/internal/infrastructure/auth"
	"github.com/iho/fundledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	// JWTManager enables bearer auth on mutating routes when set.
	JWTManager     *auth.JWTManager
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Mutations
		r.Group(func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			}
			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Post("/fund", cfg.LedgerHandler.Fund)
			r.Post("/withdraw", cfg.LedgerHandler.Withdraw)
			r.Post("/withdraw/cheaper", cfg.LedgerHandler.CheaperWithdraw)
		})

		// Ledger
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", cfg.LedgerHandler.GetLedger)
			r.Get("/owner", cfg.LedgerHandler.GetOwner)
			r.Get("/price-feed", cfg.LedgerHandler.GetPriceFeed)
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
		})

		// Funders
		r.Route("/funders", func(r chi.Router) {
			r.Get("/", cfg.LedgerHandler.ListFunders)
			r.Get("/count", cfg.LedgerHandler.CountFunders)
			r.Get("/{index}", cfg.LedgerHandler.GetFunder)
		})

		r.Get("/contributions/{address}", cfg.LedgerHandler.GetContribution)
		r.Get("/conversion", cfg.LedgerHandler.GetConversion)
	})

	return r
}
