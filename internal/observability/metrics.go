package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by command.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and outcome (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_cache_lookups_total",
		Help: "Cache-aside lookups by key family and outcome",
	}, []string{"family", "outcome"})

	// PostsCreated counts posts published.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "microblog_posts_created_total",
		Help: "Total number of posts published",
	})

	// FollowEdgeChanges counts follow graph mutations that changed state.
	FollowEdgeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_follow_edge_changes_total",
		Help: "Follow graph mutations by action (follow, unfollow)",
	}, []string{"action"})

	// MetricRowsImported counts metric records created by spreadsheet import.
	MetricRowsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "microblog_metric_rows_imported_total",
		Help: "Total number of metric rows created by spreadsheet import",
	})

	// ImportFailures counts rejected imports by reason.
	ImportFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "microblog_import_failures_total",
		Help: "Rejected spreadsheet imports by reason",
	}, []string{"reason"})

	// FeedComposeLatency records how long composing a feed page takes.
	FeedComposeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "microblog_feed_compose_seconds",
		Help:    "Feed composition latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})

	// WebSocketConnections is the gauge of open live-feed connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "microblog_websocket_connections",
		Help: "Number of open live-feed WebSocket connections",
	})

	// WebSocketDrops counts messages dropped because a client could not keep up.
	WebSocketDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "microblog_websocket_backpressure_drops_total",
		Help: "Total number of live-feed messages dropped due to backpressure",
	})
)

// ObserveSince records the time elapsed since start on h for the given view.
// Use with defer: defer ObserveSince(FeedComposeLatency, "home", time.Now()).
func ObserveSince(h *prometheus.HistogramVec, view string, start time.Time) {
	h.WithLabelValues(view).Observe(time.Since(start).Seconds())
}
