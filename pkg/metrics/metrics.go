package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all agent metrics
type Metrics struct {
	// Backend API metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec

	// Domain event metrics
	EventsPublished *prometheus.CounterVec
	EventsHandled   *prometheus.CounterVec

	// Notification fan-out metrics
	NotificationsCreated  prometheus.Counter
	NotificationFallbacks prometheus.Counter
	UnreadCount           prometheus.Gauge

	// Reconciler metrics
	ReconcileOpsReplayed prometheus.Counter
	ReconcileOpsDropped  prometheus.Counter
	ReconcileLatency     prometheus.Histogram
	ReconcileQueueSize   prometheus.Gauge
}

// NewMetrics creates and registers all agent metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		APIRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of backend API calls",
		}, []string{"operation", "status"}),
		APILatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of backend API calls",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published",
		}, []string{"type"}),
		EventsHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_handled_total",
			Help:      "Total number of domain events handled by the notifier",
		}, []string{"type", "status"}),
		NotificationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Total number of notifications created on the backend",
		}),
		NotificationFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_fallbacks_total",
			Help:      "Total number of client-only notifications synthesized after a failed remote create",
		}),
		UnreadCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unread_notifications",
			Help:      "Current unread notification count for the signed-in viewer",
		}),
		ReconcileOpsReplayed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_ops_replayed_total",
			Help:      "Total number of journaled best-effort operations replayed successfully",
		}),
		ReconcileOpsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_ops_dropped_total",
			Help:      "Total number of journaled operations dropped after exhausting retries",
		}),
		ReconcileLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent in one reconcile pass",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		ReconcileQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconcile_queue_size",
			Help:      "Current number of journaled operations awaiting replay",
		}),
	}
}

// NewTestMetrics builds unregistered metrics for tests, so parallel test
// packages do not fight over the default registry.
func NewTestMetrics() *Metrics {
	return &Metrics{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_api_requests_total",
		}, []string{"operation", "status"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "test_api_request_duration_seconds",
		}, []string{"operation"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_events_published_total",
		}, []string{"type"}),
		EventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_events_handled_total",
		}, []string{"type", "status"}),
		NotificationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "test_notifications_created_total",
		}),
		NotificationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "test_notification_fallbacks_total",
		}),
		UnreadCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "test_unread_notifications",
		}),
		ReconcileOpsReplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "test_reconcile_ops_replayed_total",
		}),
		ReconcileOpsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "test_reconcile_ops_dropped_total",
		}),
		ReconcileLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "test_reconcile_duration_seconds",
		}),
		ReconcileQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "test_reconcile_queue_size",
		}),
	}
}
