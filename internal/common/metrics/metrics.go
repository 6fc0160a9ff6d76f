// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"method", "route"},
	)

	SubmissionsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_accepted_total",
			Help: "Total number of form submissions accepted",
		},
		[]string{"event_id"},
	)

	SubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_rejected_total",
			Help: "Total number of form submissions rejected",
		},
		[]string{"event_id", "error_code"},
	)

	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total number of assistant chat messages processed",
		},
		[]string{"outcome"},
	)

	UploadsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "uploads_active",
			Help: "Number of file uploads currently in flight",
		},
		[]string{"event_id"},
	)
)
