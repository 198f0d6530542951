// Package metrics holds the Prometheus collectors of the dispatch service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SyncTasksCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_sync_tasks_created_total",
			Help: "Tasks materialized by sync, per intake source",
		},
		[]string{"source"},
	)

	SyncTasksCanceledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_sync_tasks_canceled_total",
			Help: "Tasks canceled by upstream cancellation, per intake source",
		},
		[]string{"source"},
	)

	SyncErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_sync_errors_total",
			Help: "Per-order errors reported by sync runs, per intake source",
		},
		[]string{"source"},
	)

	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_sync_runs_total",
			Help: "Scheduled sync runs by outcome (ok, failed, skipped)",
		},
		[]string{"outcome"},
	)

	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_sync_duration_seconds",
			Help:    "Duration of sync runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_notifications_total",
			Help: "Customer notifications by event and outcome",
		},
		[]string{"event", "outcome"},
	)

	VendorOrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_vendor_orders_total",
			Help: "Vendor intake messages by outcome (staged, rejected)",
		},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SyncTasksCreatedTotal,
			SyncTasksCanceledTotal,
			SyncErrorsTotal,
			SyncRunsTotal,
			SyncDuration,
			NotificationsTotal,
			VendorOrdersTotal,
			HTTPRequestsTotal,
			HTTPRequestDuration,
		)
	})
}

// ObserveSyncResult adds the counts of one sync run to the per-source counters.
func ObserveSyncResult(source string, created, canceled, errorCount int) {
	SyncTasksCreatedTotal.WithLabelValues(source).Add(float64(created))
	SyncTasksCanceledTotal.WithLabelValues(source).Add(float64(canceled))
	SyncErrorsTotal.WithLabelValues(source).Add(float64(errorCount))
}
