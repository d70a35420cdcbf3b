/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend
  5. Metrics:    Request counter and latency histogram

ROUTE GROUPS:
  /api/users/*            Directory and per-user computations
  /api/projects           Project directory
  /api/matrix             Cross tabulation
  /api/reports/*          Personal, team and project reports
  /api/entries            Entry creation (thin write path)
  /api/holidays           Company holiday dates
  /metrics                Prometheus scrape endpoint
  /health                 Liveness

SECURITY NOTE:
  No authentication middleware; route protection belongs to the outer
  deployment, not to this engine's adapter.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(metricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Get("/{id}/days", h.GetDayRecords)
			r.Get("/{id}/summary", h.GetMonthlySummary)
		})

		r.Get("/projects", h.ListProjects)
		r.Get("/matrix", h.GetMatrix)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/personal/{id}", h.GetPersonalReport)
			r.Get("/team", h.GetTeamReport)
			r.Get("/projects", h.GetProjectReport)
		})

		r.Post("/entries", h.CreateEntry)
		r.Post("/holidays", h.CreateHoliday)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// =============================================================================
// METRICS
// =============================================================================

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timecontrol_http_requests_total",
		Help: "HTTP requests by path pattern and status code.",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timecontrol_http_request_duration_seconds",
		Help:    "HTTP request latency by path pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		requestsTotal.WithLabelValues(pattern, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
	})
}
