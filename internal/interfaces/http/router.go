// Package http builds the API server's route tree and its lifecycle
// wrapper.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	"github.com/landwho/landwho/internal/interfaces/http/handlers"
	"github.com/landwho/landwho/internal/interfaces/http/middleware"
	prommetrics "github.com/landwho/landwho/internal/infrastructure/monitoring/prometheus"
)

// RouterConfig aggregates the handlers and middleware the route tree needs.
type RouterConfig struct {
	OwnerHandler        *handlers.OwnerHandler
	LandHandler         *handlers.LandHandler
	GridHandler         *handlers.GridHandler
	MintHandler         *handlers.MintHandler
	NotificationHandler *handlers.NotificationHandler
	HealthHandler       *handlers.HealthHandler

	CORS    middleware.CORSConfig
	Logging middleware.LoggingConfig

	Logger  logging.Logger
	Metrics *prommetrics.AppMetrics

	// MetricsHandler serves the Prometheus scrape endpoint; nil disables it.
	MetricsHandler http.Handler
}

// NewRouter constructs the complete route tree as a single http.Handler.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, cfg.Logging))

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerOwnerRoutes(api, cfg.OwnerHandler)
		registerLandRoutes(api, cfg.LandHandler, cfg.GridHandler)
		registerParcelRoutes(api, cfg.MintHandler)
		registerNotificationRoutes(api, cfg.NotificationHandler)
	})

	return r
}

func registerOwnerRoutes(r chi.Router, h *handlers.OwnerHandler) {
	if h == nil {
		return
	}
	r.Post("/owners", h.Register)
}

func registerLandRoutes(r chi.Router, h *handlers.LandHandler, g *handlers.GridHandler) {
	if h == nil {
		return
	}
	r.Route("/lands", func(lr chi.Router) {
		lr.Get("/", h.List)
		lr.Post("/", h.Register)

		lr.Route("/{landID}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Put("/", h.Update)
			item.Delete("/", h.Delete)
			if g != nil {
				item.Post("/grid", g.Partition)
			}
		})
	})
}

func registerParcelRoutes(r chi.Router, h *handlers.MintHandler) {
	if h == nil {
		return
	}
	r.Route("/parcels", func(pr chi.Router) {
		pr.Get("/", h.ListByWallet)
		pr.Post("/mint", h.Admit)
	})
}

func registerNotificationRoutes(r chi.Router, h *handlers.NotificationHandler) {
	if h == nil {
		return
	}
	r.Route("/notifications", func(nr chi.Router) {
		nr.Get("/", h.List)
		nr.Post("/{notificationID}/seen", h.MarkSeen)
	})
}
