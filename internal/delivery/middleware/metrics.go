package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts handled requests.
	// Labels: server, method, route, status
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		},
		[]string{"server", "method", "route", "status"},
	)

	// httpRequestDuration tracks handler latency per route.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "farmlink",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"server", "method", "route"},
	)
)

// MetricsMiddleware records request counts and latency per route template.
type MetricsMiddleware struct {
	server string
}

// NewMetricsMiddleware creates a metrics middleware labelled with the server name.
func NewMetricsMiddleware(server string) *MetricsMiddleware {
	return &MetricsMiddleware{server: server}
}

// Handle records one observation per request.
func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		// Let the error handler write the response so the status is final
		if err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request().Method

		httpRequestDuration.WithLabelValues(m.server, method, route).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(m.server, method, route, strconv.Itoa(c.Response().Status)).Inc()

		return nil
	}
}
