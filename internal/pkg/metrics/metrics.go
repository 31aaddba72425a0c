package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Detection metrics
var (
	DocumentsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_documents_detected_total",
		Help: "Total number of documents run through language detection",
	})

	DetectionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "langindexer_detection_latency_seconds",
		Help:    "Time taken to detect the language of one document",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
	})

	BytesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_bytes_scanned_total",
		Help: "Total number of letter bytes scanned",
	})

	DetectedLanguages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langindexer_detected_language_total",
			Help: "Documents per detected top language",
		},
		[]string{"language"},
	)

	UnreliableResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_unreliable_results_total",
		Help: "Total number of documents without a reliable language",
	})
)

// Cache metrics
var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_cache_hits_total",
		Help: "Total number of detections served from the cache",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_cache_misses_total",
		Help: "Total number of cache lookups that missed",
	})
)

// Shadow comparison metrics
var (
	ShadowAgreements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_shadow_agreements_total",
		Help: "Documents where the shadow detector agreed with the top language",
	})

	ShadowDisagreements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langindexer_shadow_disagreements_total",
			Help: "Documents where the shadow detector disagreed, by shadow language",
		},
		[]string{"shadow_language"},
	)
)

// Ingestion metrics
var (
	QueueRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_queue_rejections_total",
		Help: "Total number of submissions rejected because the queue was full or closed",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_rate_limited_requests_total",
		Help: "Total number of HTTP requests rejected by the rate limiter",
	})

	ProcessingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "langindexer_processing_failures_total",
		Help: "Total number of submissions that failed processing",
	})
)

// Sink metrics
var (
	DocumentsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langindexer_documents_indexed_total",
			Help: "Total number of detections written, by sink",
		},
		[]string{"sink"},
	)

	BulkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langindexer_bulk_failures_total",
			Help: "Total number of detections a sink failed to write, by sink",
		},
		[]string{"sink"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "langindexer_circuit_breaker_state",
			Help: "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service"},
	)
)
