package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttempts tracks operation attempts through the retry engine
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_retry_attempts_total",
			Help: "Total number of operation attempts made by the retry engine",
		},
		[]string{"operation"},
	)

	// RetryExhaustions tracks operations that failed every attempt
	RetryExhaustions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_retry_exhaustions_total",
			Help: "Total number of operations that exhausted all retry attempts",
		},
		[]string{"operation"},
	)

	// AdRequests tracks ad requests per placement and outcome
	AdRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_ad_requests_total",
			Help: "Total number of ad requests",
		},
		[]string{"placement", "outcome"},
	)

	// AdRequestLatency tracks end-to-end ad request latency
	AdRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adsdk_ad_request_latency_seconds",
			Help:    "Ad request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"placement"},
	)

	// FallbacksServed tracks synthesized fallback ads per placement
	FallbacksServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_fallbacks_served_total",
			Help: "Total number of fallback ads synthesized",
		},
		[]string{"placement"},
	)

	// TelemetryFlushes tracks pipeline flushes per channel and outcome
	TelemetryFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_telemetry_flushes_total",
			Help: "Total number of telemetry batch flushes",
		},
		[]string{"channel", "outcome"},
	)

	// TelemetryEntriesDropped tracks entries lost to failed submissions
	TelemetryEntriesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_telemetry_entries_dropped_total",
			Help: "Total number of telemetry entries dropped after submission failure",
		},
		[]string{"channel"},
	)

	// CacheOps tracks ad cache operations per result
	CacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsdk_cache_ops_total",
			Help: "Total number of ad cache operations",
		},
		[]string{"op", "result"},
	)

	// CollectorIngested tracks telemetry entries accepted by the collector
	CollectorIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_entries_ingested_total",
			Help: "Total number of telemetry entries ingested",
		},
		[]string{"kind"},
	)

	// CollectorIngestLatency tracks ingest request handling latency
	CollectorIngestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collector_ingest_latency_seconds",
			Help:    "Ingest request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)
