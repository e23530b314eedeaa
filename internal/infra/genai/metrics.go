package genai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts gateway operations.
	// Labels: kind (price, trends, recommendations, image), result (ok, error)
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "genai",
			Name:      "requests_total",
			Help:      "Total number of generation requests by kind and result",
		},
		[]string{"kind", "result"},
	)

	// requestDuration tracks how long a gateway operation takes, retries included.
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "farmlink",
			Subsystem: "genai",
			Name:      "request_duration_seconds",
			Help:      "Duration of generation requests in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"kind"},
	)

	// toolCallsTotal counts tool callbacks executed for the model.
	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "genai",
			Name:      "tool_calls_total",
			Help:      "Total number of tool callbacks executed",
		},
		[]string{"tool"},
	)
)
