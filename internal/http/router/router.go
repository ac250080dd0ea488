package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gestorpro/gestor-api/internal/auth"
	"github.com/gestorpro/gestor-api/internal/cache"
	"github.com/gestorpro/gestor-api/internal/config"
	"github.com/gestorpro/gestor-api/internal/database"
	"github.com/gestorpro/gestor-api/internal/http/handler"
	"github.com/gestorpro/gestor-api/internal/http/middleware"
	"github.com/gestorpro/gestor-api/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/gestorpro/gestor-api/docs" // registers the swagger spec
)

const healthCheckTimeout = 2 * time.Second

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Pipeline *handler.PipelineHandler
	Stage    *handler.StageHandler
	Deal     *handler.DealHandler
	Contact  *handler.ContactHandler
	Finance  *handler.FinanceHandler
	Address  *handler.AddressHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	cache          *cache.Cache
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	boardCache *cache.Cache,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		cache:          boardCache,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	if rt.cfg.Server.EnableMetrics {
		r.Use(middleware.Metrics)
	}
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Server.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimiddleware.Timeout(timeout))
		}
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.LimitByUser)

		r.Route("/pipeline", func(r chi.Router) {
			r.Get("/board", h.Pipeline.GetBoard)
			r.Post("/drop", h.Pipeline.Drop)
		})

		r.Route("/stages", func(r chi.Router) {
			r.Get("/", h.Stage.ListStages)
			r.Post("/", h.Stage.CreateStage)
			r.Put("/order", h.Stage.ReorderStages)
			r.Put("/{id}", h.Stage.UpdateStage)
			r.Delete("/{id}", h.Stage.DeleteStage)
		})

		r.Route("/deals", func(r chi.Router) {
			r.Get("/", h.Deal.ListDeals)
			r.Post("/", h.Deal.CreateDeal)
			r.Get("/{id}", h.Deal.GetDeal)
			r.Put("/{id}", h.Deal.UpdateDeal)
			r.Delete("/{id}", h.Deal.DeleteDeal)
			r.Post("/{id}/move", h.Deal.MoveDeal)
			r.Get("/{id}/history", h.Deal.GetHistory)
			r.Get("/{id}/quotes", h.Finance.ListDealQuotes)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.Contact.ListContacts)
			r.Post("/", h.Contact.CreateContact)
			r.Get("/{id}", h.Contact.GetContact)
			r.Put("/{id}", h.Contact.UpdateContact)
			r.Delete("/{id}", h.Contact.DeleteContact)
			r.Get("/{id}/timeline", h.Contact.GetTimeline)
			r.Get("/{id}/quotes", h.Finance.ListContactQuotes)
			r.Get("/{id}/transactions", h.Finance.ListContactTransactions)
		})

		r.Post("/quotes", h.Finance.CreateQuote)
		r.Post("/transactions", h.Finance.CreateTransaction)
		r.Post("/transactions/{id}/receive", h.Finance.ReceiveTransaction)

		r.Route("/address", func(r chi.Router) {
			r.Get("/zip/{zip}", h.Address.LookupZip)
			r.Get("/search", h.Address.Search)
		})
	})

	return r
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	stats, err := database.HealthCheck(ctx, rt.db)
	if err != nil {
		rt.logger.Error("database health check failed", zap.Error(err))
		writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	writeHealth(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}

// readiness checks the database and, when configured, Redis. A Redis outage
// degrades the board cache only, so it is reported without failing the probe.
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]interface{})
	status := http.StatusOK

	if _, err := database.HealthCheck(ctx, rt.db); err != nil {
		rt.logger.Error("database health check failed", zap.Error(err))
		checks["database"] = map[string]string{"status": "unhealthy", "error": err.Error()}
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = map[string]string{"status": "healthy"}
	}

	if rt.cache != nil {
		if err := rt.cache.Ping(ctx); err != nil {
			rt.logger.Warn("redis health check failed", zap.Error(err))
			checks["redis"] = map[string]string{"status": "degraded", "error": err.Error()}
		} else {
			checks["redis"] = map[string]string{"status": "healthy"}
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	writeHealth(w, status, map[string]interface{}{"status": overall, "checks": checks})
}

func writeHealth(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
