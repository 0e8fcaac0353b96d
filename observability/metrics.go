package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

var (
	// Message log
	MessagesAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatsync_messages_appended_total",
			Help: "Total messages durably appended",
		},
	)

	AppendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_append_failures_total",
			Help: "Total rejected or failed appends",
		},
		[]string{"reason"}, // "validation", "forbidden" or "remote"
	)

	// Summary updates that failed after the message was stored
	SummaryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatsync_summary_failures_total",
			Help: "Total room summary updates that failed after a durable append",
		},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_notifications_total",
			Help: "Push notifications by outcome",
		},
		[]string{"outcome"},
	)

	// Live views
	ActiveLiveViews = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chatsync_live_views_active",
			Help: "Currently open live views",
		},
		[]string{"kind"}, // "rooms" or "messages"
	)

	WatchRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_watch_restarts_total",
			Help: "Live subscriptions re-opened after a failure",
		},
		[]string{"kind"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatsync_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route", "status"},
	)
)
