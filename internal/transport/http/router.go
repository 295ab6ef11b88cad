package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chemconsole/internal/platform/health"
	"chemconsole/internal/platform/metrics"
	"chemconsole/internal/platform/middleware"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Auth      *AuthHandler
	Users     *UsersHandler
	Presence  *PresenceHandler
	Health    *health.Handler
	Validator middleware.SessionValidator
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// NewRouter assembles the full route tree with the shared middleware stack.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	if deps.Metrics != nil {
		r.Use(endpointLatency(deps.Metrics))
	}

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			deps.Auth.Register(r)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(deps.Validator, deps.Logger))
				deps.Auth.RegisterProtected(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(deps.Validator, deps.Logger))
			deps.Users.Register(r)
			deps.Presence.Register(r)
		})
	})

	return r
}

// endpointLatency observes per-route latency using the chi route pattern so
// path parameters do not explode the label space.
func endpointLatency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			m.EndpointLatency.WithLabelValues(r.Method + " " + pattern).Observe(time.Since(start).Seconds())
		})
	}
}
