package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts metadata lookups by result: hit, negative_hit,
	// store_hit, not_found, error.
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imageflow_lookups_total",
		Help: "Total metadata lookups by outcome",
	}, []string{"result"})

	// CacheErrors counts cache operations that degraded to a miss.
	CacheErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageflow_cache_errors_total",
		Help: "Cache operations that failed and degraded to a miss",
	})

	// CacheFillFailures counts best-effort cache writes that failed.
	CacheFillFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageflow_cache_fill_failures_total",
		Help: "Cache fills that failed after a store read",
	})

	// StoreLatency tracks authoritative store read latency.
	StoreLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "imageflow_store_latency_seconds",
		Help:    "Metadata store read duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// DeliveriesTotal counts delivery resolutions by strategy.
	DeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imageflow_deliveries_total",
		Help: "Delivery target resolutions by strategy",
	}, []string{"strategy"})

	// RecordsRegistered counts metadata records written by the registrar.
	RecordsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "imageflow_records_registered_total",
		Help: "Metadata records written from pipeline events",
	})
)

// RecordLookup records a lookup outcome.
func RecordLookup(result string) {
	LookupsTotal.WithLabelValues(result).Inc()
}
