package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	SweepRunCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_sweep_run_count",
			Help: "Total number of deadline sweep invocations",
		},
		[]string{"result"}, // result: success, partial, skipped
	)

	DeadlineNotificationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadline_notification_count",
			Help: "Deadline notifications created, by day offset",
		},
		[]string{"offset"},
	)

	ProjectDeleteCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_delete_count",
			Help: "Cascading project deletions",
		},
		[]string{"result"}, // result: success, denied, not_found, failed
	)

	NotificationDeliveryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_delivery_count",
			Help: "Notification deliveries handled by the worker",
		},
		[]string{"status"}, // status: success, failed
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
