package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthCheckTimeout bounds each dependency check in /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(cors.Handler(s.corsOptions()))
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// No auth: liveness and scraping.
		r.Get("/health", s.handleHealth)
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

		// WebSocket authenticates with ?token= in the handler.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/lock/control", s.handleLockControl)
			r.Put("/access-code", s.handleRotateAccessCode)
			r.Get("/events/{kind}", s.handleListEvents)
		})
	})

	return r
}

// corsOptions allows every origin when none are configured (dev mode).
func (s *Server) corsOptions() cors.Options {
	origins := s.cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	}
}

type healthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Relay         string            `json:"relay,omitempty"`
	Subscriptions int               `json:"subscriptions"`
	WSClients     int               `json:"ws_clients"`
	Checks        map[string]string `json:"checks"`
}

// handleHealth reports dependency status. Only a failing database makes
// the service unhealthy; a broker or InfluxDB outage is reported as degraded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Version:   s.version,
		WSClients: s.hub.ClientCount(),
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	if s.relay != nil {
		resp.Relay = string(s.relay.State())
		resp.Subscriptions = s.relay.Subscriptions()
	}

	if s.mqtt != nil {
		resp.Checks["mqtt"] = checkResult(r.Context(), s.mqtt)
		if resp.Checks["mqtt"] != "ok" {
			resp.Status = "degraded"
		}
	}
	// The time-series sink is best-effort, so it can only degrade.
	if s.influx != nil {
		resp.Checks["influxdb"] = checkResult(r.Context(), s.influx)
		if resp.Checks["influxdb"] != "ok" {
			resp.Status = "degraded"
		}
	}
	if s.db != nil {
		resp.Checks["database"] = checkResult(r.Context(), s.db)
		if resp.Checks["database"] != "ok" {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

func checkResult(ctx context.Context, c HealthChecker) string {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := c.HealthCheck(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}
