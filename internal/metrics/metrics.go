// Package metrics exposes Prometheus collectors for matching, routing and notifications.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stand_match_runs_total",
			Help: "Total number of matching pipeline runs",
		},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stand_match_duration_seconds",
			Help:    "Duration of a matching pipeline run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stand_match_score",
			Help:    "Aggregate score of returned matches",
			Buckets: prometheus.LinearBuckets(30, 10, 8),
		},
	)

	RoutingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stand_lead_routing_total",
			Help: "Lead routing attempts by outcome",
		},
		[]string{"outcome"},
	)

	ReRoutedLeads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stand_lead_reroutes_total",
			Help: "Leads picked up by the inactivity re-route sweep",
		},
		[]string{"outcome"},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stand_notifications_total",
			Help: "Notifications dispatched by channel and status",
		},
		[]string{"channel", "status"},
	)

	NotifierQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stand_notifier_queue_depth",
			Help: "Messages waiting in the notification queue",
		},
	)

	BuilderCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stand_builder_cache_lookups_total",
			Help: "Builder cache lookups by result",
		},
		[]string{"result"},
	)
)

var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stand_http_requests_total",
		Help: "HTTP API requests by route and status code",
	},
	[]string{"route", "code"},
)

var DBQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "stand_db_query_duration_seconds",
		Help:    "PostgreSQL statement duration by operation",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation"},
)
