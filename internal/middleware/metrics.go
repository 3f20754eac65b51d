package middleware

import (
	"sync"

	"inkwell/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics collector.
// Collectors register with the default registry, so it is created once.
func InitMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(observability.ServiceName)
	})
	return prom
}

// MetricsMiddleware records request counts and latencies.
func MetricsMiddleware() fiber.Handler {
	return InitMetrics().Middleware
}

// RegisterMetricsRoute exposes the Prometheus endpoint on app.
func RegisterMetricsRoute(app *fiber.App, path string) {
	InitMetrics().RegisterAt(app, path)
}
