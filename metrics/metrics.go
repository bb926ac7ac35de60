// Package metrics exposes the measurement half of the strategy comparison:
// per-operation request counters and latency histograms, labeled with the
// active authentication strategy so the session and token instances can be
// compared side by side.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors on a private registry,
// so multiple instances (one per strategy) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors, labeled with the given strategy name.
func New(strategy string) *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "authsvc_http_requests_total",
		Help:        "Total HTTP requests handled, by operation and status code.",
		ConstLabels: prometheus.Labels{"strategy": strategy},
	}, []string{"operation", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "authsvc_http_request_duration_seconds",
		Help:        "HTTP request latency, by operation.",
		ConstLabels: prometheus.Labels{"strategy": strategy},
		Buckets:     prometheus.DefBuckets,
	}, []string{"operation"})

	registry.MustRegister(requests, duration)

	return &Metrics{
		registry: registry,
		requests: requests,
		duration: duration,
	}
}

// Middleware returns an echo middleware that records a counter increment and
// a latency observation for every request.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			operation := c.Path()
			if operation == "" {
				operation = c.Request().URL.Path
			}

			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
			}

			m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
			m.requests.WithLabelValues(operation, strconv.Itoa(status)).Inc()

			return err
		}
	}
}

// Handler returns the /metrics endpoint handler for this registry.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
