package impl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// persistFailures counts record writes that failed and were dropped.
	// Labels: record
	persistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "store",
			Name:      "persist_failures_total",
			Help:      "Total number of session record writes that failed",
		},
		[]string{"record"},
	)

	// eventsPublished counts market events handed to the publisher.
	// Labels: type, result (ok, error)
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "store",
			Name:      "events_published_total",
			Help:      "Total number of market events published",
		},
		[]string{"type", "result"},
	)

	// sessionsOpen tracks the sessions held in memory.
	sessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "farmlink",
			Subsystem: "session",
			Name:      "open",
			Help:      "Number of session stores held in memory",
		},
	)

	// sessionExpirations counts session stores dropped after their token lifetime passed unused.
	sessionExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "session",
			Name:      "expirations_total",
			Help:      "Total number of idle session stores dropped from memory",
		},
	)

	// sessionRejections counts sessions refused because the registry was full.
	sessionRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "session",
			Name:      "rejections_total",
			Help:      "Total number of sessions refused at capacity",
		},
	)

	// insightRequests counts generation requests by operation.
	// Labels: operation, result (ok, error)
	insightRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "farmlink",
			Subsystem: "insight",
			Name:      "requests_total",
			Help:      "Total number of insight requests",
		},
		[]string{"operation", "result"},
	)
)
