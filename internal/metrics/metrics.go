package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "HTTP requests by route, method and status class",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// 0 = closed, 1 = half-open, 2 = open
	StoreBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "folio_store_breaker_state",
			Help: "Document store circuit breaker state",
		},
		[]string{"name"},
	)

	StoreBreakerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_store_breaker_rejections_total",
			Help: "Store calls rejected while the breaker was open",
		},
		[]string{"name"},
	)

	ProfileCacheFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_profile_cache_fallbacks_total",
			Help: "Profile reads or writes served by the fallback cache",
		},
		[]string{"op"},
	)

	NotificationPollFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_notification_poll_failures_total",
			Help: "Notification watcher polls that failed and were skipped",
		},
	)

	ConnectionRepairs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_connection_repairs_total",
			Help: "Connection mirrors written by the reconciliation pass",
		},
	)
)
