package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all metrics
type Metrics struct {
	VectorInserts prometheus.Counter
	VectorDeletes prometheus.Counter
	SearchQueries prometheus.Counter
	SearchErrors  prometheus.Counter
	SearchLatency prometheus.Histogram
	BlockReads    prometheus.Counter
	BlockWrites   prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// GetMetrics returns the process-wide metrics instance. promauto registers
// against the default registry, so construction happens exactly once no
// matter how many indexes a process opens.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			VectorInserts: promauto.NewCounter(prometheus.CounterOpts{
				Name: "diskvec_vector_inserts_total",
				Help: "Total vector insertions",
			}),
			VectorDeletes: promauto.NewCounter(prometheus.CounterOpts{
				Name: "diskvec_vector_deletes_total",
				Help: "Total vector deletions",
			}),
			SearchQueries: promauto.NewCounter(prometheus.CounterOpts{
				Name: "diskvec_search_queries_total",
				Help: "Total search queries",
			}),
			SearchErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "diskvec_search_errors_total",
				Help: "Total search errors",
			}),
			SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name: "diskvec_search_latency_seconds",
				Help: "Search latency",
			}),
			BlockReads: promauto.NewCounter(prometheus.CounterOpts{
				Name: "diskvec_block_reads_total",
				Help: "Node blocks paged in",
			}),
			BlockWrites: promauto.NewCounter(prometheus.CounterOpts{
				Name: "diskvec_block_writes_total",
				Help: "Node blocks written back",
			}),
			CacheHits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "diskvec_blob_cache_hits_total",
				Help: "BLOB handle cache hits",
			}),
			CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "diskvec_blob_cache_misses_total",
				Help: "BLOB handle cache misses",
			}),
		}
	})
	return metrics
}
