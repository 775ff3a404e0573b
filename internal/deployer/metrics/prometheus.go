package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksCreated counts create-task transactions per network
	TasksCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stablerate",
		Subsystem: "deployer",
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created on the automation platform",
	}, []string{"network"})

	// TasksCancelled counts cancel-task transactions per network
	TasksCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stablerate",
		Subsystem: "deployer",
		Name:      "tasks_cancelled_total",
		Help:      "Total number of tasks cancelled on the automation platform",
	}, []string{"network"})

	// TasksUnchanged counts configs matched to an already-deployed task
	TasksUnchanged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stablerate",
		Subsystem: "deployer",
		Name:      "tasks_unchanged_total",
		Help:      "Total number of configs left untouched because a matching task exists",
	}, []string{"network"})

	// ConfigsSkipped counts configs skipped with a diagnostic
	ConfigsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stablerate",
		Subsystem: "deployer",
		Name:      "configs_skipped_total",
		Help:      "Total number of configs skipped due to validation or lookup errors",
	}, []string{"reason"})

	// ReconcileDuration observes full reconcile run durations
	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stablerate",
		Subsystem: "deployer",
		Name:      "reconcile_duration_seconds",
		Help:      "Duration of reconciliation runs",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
