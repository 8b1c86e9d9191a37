package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackmatrix_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hackmatrix_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	RequestInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hackmatrix_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method"},
	)

	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackmatrix_rate_limiter_rejections_total",
			Help: "Total number of requests rejected by rate limiter",
		},
		[]string{"limiter"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hackmatrix_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ScoresSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hackmatrix_scores_submitted_total",
			Help: "Total number of judge score submissions (including re-submissions)",
		},
	)

	RankingsFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hackmatrix_rankings_finalized_total",
			Help: "Total number of ranking finalizations",
		},
	)

	// TeamInvitations counts invitation lifecycle events: sent, accepted, declined, rejected_full
	TeamInvitations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackmatrix_team_invitations_total",
			Help: "Team invitation events by result",
		},
		[]string{"result"},
	)

	SearchSync = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackmatrix_search_sync_total",
			Help: "Outbox events mirrored to the search index by result",
		},
		[]string{"result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hackmatrix_leaderboard_cache_lookups_total",
			Help: "Leaderboard cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordDBOperation observes how long a named storage operation took.
func RecordDBOperation(operation string, start time.Time) {
	DatabaseOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
