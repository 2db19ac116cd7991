package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lensdrop_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lensdrop_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	DerivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lensdrop_derivations_total",
			Help: "Image derivation outcomes.",
		},
		[]string{"outcome"},
	)

	DerivationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lensdrop_derivation_duration_seconds",
			Help:    "Time spent producing optimized and thumbnail renditions.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PresignedURLsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lensdrop_presigned_urls_total",
			Help: "Presigned URLs issued, by kind.",
		},
		[]string{"kind"},
	)
)
