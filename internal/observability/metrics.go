package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackd",
		Name:      "analyses_dispatched_total",
		Help:      "Total number of analysis jobs published to the worker fleet",
	}, []string{"kind"})

	DispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trackd",
		Name:      "dispatch_failures_total",
		Help:      "Total number of analysis jobs that failed to publish",
	}, []string{"kind"})

	DetectionsStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trackd",
		Name:      "detections_stored_total",
		Help:      "Total number of worker detection records persisted",
	})

	UnresolvedVideos = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trackd",
		Name:      "unresolved_videos_total",
		Help:      "Detection records skipped during timeline reconstruction because their video had no camera mapping",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trackd",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "trackd",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
