package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChecksRun counts staleness checks executed.
	ChecksRun = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stablerate",
		Subsystem: "keeper",
		Name:      "checks_run_total",
		Help:      "Total number of staleness checks executed",
	})

	// StaleConsumers tracks how many consumers the last check found stale.
	StaleConsumers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stablerate",
		Subsystem: "keeper",
		Name:      "stale_consumers",
		Help:      "Number of stale consumers found by the last check",
	})

	// ProposalsEmitted counts checks that produced at least one refresh call.
	ProposalsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stablerate",
		Subsystem: "keeper",
		Name:      "proposals_emitted_total",
		Help:      "Total number of checks that proposed refresh calls",
	})

	// CheckDuration observes end to end check latency.
	CheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stablerate",
		Subsystem: "keeper",
		Name:      "check_duration_seconds",
		Help:      "Duration of staleness checks in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)
