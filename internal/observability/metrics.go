package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// PageCacheRequests counts listing cache lookups by result (hit, miss, error).
	PageCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_page_cache_requests_total",
		Help: "Total number of page cache lookups by result",
	}, []string{"result"})

	// PageCacheInvalidations counts explicit and write-triggered cache flushes.
	PageCacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_page_cache_invalidations_total",
		Help: "Total number of page cache flushes",
	})

	// DBQueryDuration observes SQL statement latency by leading keyword.
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_db_query_duration_seconds",
		Help:    "SQL statement duration by statement kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// FollowChanges counts follow graph mutations that changed state.
	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_follow_changes_total",
		Help: "Total number of follow edges created or removed",
	}, []string{"action"})
)

// Page cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
