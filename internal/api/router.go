package api

import (
	"log/slog"
	"net/http"

	"ticketsim/internal/api/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// NewRouter wires the HTTP surface. redisClient may be nil, which disables
// the idempotency middleware.
func NewRouter(h *Handlers, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.With(middleware.Idempotency(redisClient)).Post("/runs", h.StartRun)
	r.Get("/runs/{id}", h.GetRun)
	r.Get("/flights/{transactionID}/tickets", h.ListFlightTickets)

	r.Handle("/metrics", promhttp.Handler())

	slog.Info("registered routes",
		"routes", []string{"POST /runs", "GET /runs/{id}", "GET /flights/{transactionID}/tickets", "GET /metrics"})

	return r
}
