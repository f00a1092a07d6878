// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Inbox metrics
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_messages_received_total",
			Help: "Total messages stored in the inbox",
		},
		[]string{"source"}, // "web" or "mail"
	)

	RejectedSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_submissions_rejected_total",
			Help: "Total submissions rejected by validation",
		},
		[]string{"source"},
	)

	// Notification relay metrics
	NotificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_notifications_sent_total",
			Help: "Total new-message notifications relayed",
		},
	)

	NotificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_notifications_failed_total",
			Help: "Total new-message notifications that could not be relayed",
		},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_websocket_clients",
			Help: "Currently connected notification clients",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"path"},
	)
)
