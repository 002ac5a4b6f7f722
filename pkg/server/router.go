package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ceetaro/suitkaise/internal/cli/health"
	"github.com/ceetaro/suitkaise/internal/logger"
	"github.com/ceetaro/suitkaise/pkg/metrics"
)

// NewRouter builds the debug HTTP surface: /healthz, /metrics, and /trace.
// startedAt is reported back in every /healthz response so a `suitkaise
// status` client can compute how long this process has been up.
func NewRouter(hub *TraceHub, startedAt time.Time) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", handleHealthz(startedAt))

	if metrics.IsEnabled() {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	r.Get("/trace", hub.ServeHTTP)

	return r
}

// handleHealthz reports process identity and uptime in the shape
// internal/cli/health.Response describes, so `suitkaise status` can parse
// it the same way regardless of which command started the server.
func handleHealthz(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := time.Since(startedAt)

		var resp health.Response
		resp.Status = "healthy"
		resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
		resp.Data.Service = "suitkaise"
		resp.Data.StartedAt = startedAt.UTC().Format(time.RFC3339)
		resp.Data.Uptime = uptime.String()
		resp.Data.UptimeSec = int64(uptime.Seconds())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Debug("debug server request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
