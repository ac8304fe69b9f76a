package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is anything with a connectivity check, such as the pgx pool or the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	checks    map[string]Pinger
	critical  map[string]bool
	version   string
	startedAt time.Time
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Services   map[string]string `json:"services"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Goroutines int               `json:"goroutines"`
}

func NewHealthHandlers(version string) *HealthHandlers {
	return &HealthHandlers{
		checks:    make(map[string]Pinger),
		critical:  make(map[string]bool),
		version:   version,
		startedAt: time.Now(),
	}
}

// AddCheck registers a dependency. A failing critical dependency makes the service not ready.
func (h *HealthHandlers) AddCheck(name string, p Pinger, critical bool) *HealthHandlers {
	h.checks[name] = p
	h.critical[name] = critical
	return h
}

func (h *HealthHandlers) run(ctx context.Context) (map[string]string, bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	services := make(map[string]string, len(h.checks))
	healthy, ready := true, true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			services[name] = "unhealthy"
			healthy = false
			if h.critical[name] {
				ready = false
			}
			continue
		}
		services[name] = "healthy"
	}
	return services, healthy, ready
}

// HealthCheck reports every dependency; degraded dependencies still answer 200.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	services, healthy, _ := h.run(c.Request().Context())
	health := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   services,
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Version:    h.version,
		Goroutines: runtime.NumGoroutine(),
	}
	if !healthy {
		health.Status = "degraded"
	}
	return c.JSON(http.StatusOK, health)
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	services, _, ready := h.run(c.Request().Context())
	if !ready {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":   "not_ready",
			"services": services,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ready",
		"services": services,
	})
}

// LivenessCheck determines if the application is running (basic liveness check)
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
