package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_runs_total",
		Help: "Total number of dispatch cycles executed.",
	})

	NotificationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_notifications_processed_total",
		Help: "Total number of notifications processed, by outcome.",
	}, []string{"outcome"})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_deliveries_total",
		Help: "Total number of delivery records written, by channel and status.",
	}, []string{"channel", "status"})

	BroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_broadcast_failures_total",
		Help: "Total number of realtime broadcast publishes that failed.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_run_duration_seconds",
		Help:    "Duration of a full dispatch cycle.",
		Buckets: prometheus.DefBuckets,
	})
)
