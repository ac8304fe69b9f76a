// Package metrics holds the Prometheus collectors for the lifecycle workflows.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StatusTransitionsTotal counts applied property and tenant status changes.
	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentflow",
			Name:      "status_transitions_total",
			Help:      "Total number of applied status transitions",
		},
		[]string{"entity", "from", "to"},
	)

	// CompensationsTotal counts saga compensations by saga and failed step.
	CompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentflow",
			Subsystem: "saga",
			Name:      "compensations_total",
			Help:      "Total number of saga compensations run",
		},
		[]string{"saga", "step"},
	)

	SweepLeasesExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentflow",
			Subsystem: "sweep",
			Name:      "leases_expired_total",
			Help:      "Total number of leases marked expired by the daily sweep",
		},
	)

	SweepTenantsDeactivated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentflow",
			Subsystem: "sweep",
			Name:      "tenants_deactivated_total",
			Help:      "Total number of tenants made inactive by the daily sweep",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rentflow",
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Duration of daily sweep runs in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentflow",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rentflow",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func RecordTransition(entity, from, to string) {
	if from == "" {
		from = "none"
	}
	StatusTransitionsTotal.WithLabelValues(entity, from, to).Inc()
}

func RecordCompensation(saga, step string) {
	CompensationsTotal.WithLabelValues(saga, step).Inc()
}

// Middleware records request counts and latency keyed by the route pattern, not the raw path.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(c.Response().Status)).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
