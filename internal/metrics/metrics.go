// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nexus_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ResponseCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_response_cache_total",
			Help: "Response cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	TMDBRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_tmdb_requests_total",
			Help: "Requests sent to TMDb by result (success, failure, rejected)",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nexus_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	IngestPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_ingest_pages_total",
			Help: "TMDb pages processed by ingestion, by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	IngestMoviesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_ingest_movies_total",
			Help: "Movies written by ingestion, by result (created, updated, failed)",
		},
		[]string{"result"},
	)

	IngestLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nexus_ingest_last_run_timestamp_seconds",
			Help: "Unix time of the last completed ingestion run",
		},
	)

	EmailDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nexus_email_deliveries_total",
			Help: "Outgoing emails by result (sent, failed, dropped)",
		},
		[]string{"result"},
	)
)
