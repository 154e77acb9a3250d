package routes

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitecrew/api/internal/infra/http/handler"
)

// registerMiscRoutes registers health probes and the metrics endpoint.
func registerMiscRoutes(router Router, h *handler.HealthHandler) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", promhttp.Handler().ServeHTTP)
}
