package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kinfolk/internal/platform/metrics"
	"kinfolk/internal/platform/middleware"
	"kinfolk/pkg/platform/httputil"
	"kinfolk/pkg/platform/middleware/metadata"
	"kinfolk/pkg/platform/middleware/requesttime"
)

type registrar interface {
	Register(r chi.Router)
}

func newRouter(log *slog.Logger, m *metrics.Metrics, checks map[string]func(context.Context) error, handlers ...registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(log))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(log, m))

	r.Get("/health", healthHandler(checks))
	r.Handle("/metrics", promhttp.Handler())
	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler pings every configured backend; any failure answers 503.
func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
