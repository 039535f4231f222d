package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"smartstore/internal/platform/metrics"
	"smartstore/internal/platform/middleware"
	storehandler "smartstore/internal/store/handler"
	userhandler "smartstore/internal/user/handler"
	"smartstore/pkg/platform/httputil"
)

// NewRouter mounts the store and user APIs under /api/v1 next to the health
// and metrics endpoints.
func NewRouter(a *App, logger *slog.Logger, httpMetrics *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(httpMetrics.Middleware)

	r.Get("/health", a.handleHealth)
	r.Handle("/metrics", metrics.Handler(gatherer))

	r.Route("/api/v1", func(r chi.Router) {
		storehandler.New(a.Stores, logger).Register(r)
		userhandler.New(a.Users, logger).Register(r)
	})
	return r
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := a.Datastore.Size(ctx); err != nil {
		a.logger.WarnContext(ctx, "health check failed", "error", err)
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"queued_events": a.Queue.Len(),
	})
}
