package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Backend call metrics
	backendCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_call_duration_seconds",
			Help:    "Backend API call duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service", "method", "status_code"},
	)

	// Session metrics
	sessionsClearedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_cleared_total",
			Help: "Total number of sessions cleared",
		},
		[]string{"reason"}, // logout, token_expired, token_malformed
	)
)

// Init registers all metrics with the default registry
func Init() error {
	collectors := []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDuration,
		backendCallDuration,
		sessionsClearedTotal,
	}

	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// HTTPMetricsMiddleware records request counts and latency per route
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		labels := []string{c.Method(), c.Route().Path, strconv.Itoa(status)}
		httpRequestsTotal.WithLabelValues(labels...).Inc()
		httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordBackendCall records a call to the flight booking backend.
// statusCode 0 means the call never produced a response (transport failure).
func RecordBackendCall(service, method string, statusCode int, duration time.Duration) {
	backendCallDuration.WithLabelValues(service, method, strconv.Itoa(statusCode)).
		Observe(duration.Seconds())
}

// RecordSessionCleared counts a session teardown by reason.
func RecordSessionCleared(reason string) {
	sessionsClearedTotal.WithLabelValues(reason).Inc()
}

// PrometheusHandler exposes the /metrics endpoint on a fiber app
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
