package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Observations ingested, labelled by outcome (created, updated, invalid, error)
	IngestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_ingest_total",
		Help: "Total number of ingested price observations",
	}, []string{"result"})

	IngestConflictRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_ingest_conflict_retries_total",
		Help: "Ingestions retried after losing a first-sight uniqueness race",
	})

	AlertsTriggered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_alerts_triggered_total",
		Help: "Total number of triggered price alerts",
	})

	InsightComputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_insight_compute_seconds",
		Help:    "Latency of loading a snapshot window and computing an insight",
		Buckets: prometheus.DefBuckets,
	})

	// Fetch tasks published by the scheduler, labelled by outcome (published, leased, error)
	SchedulerDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_dispatched_total",
		Help: "Total number of due products dispatched for fetching",
	}, []string{"result"})
)

var once sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			IngestTotal,
			IngestConflictRetries,
			AlertsTriggered,
			InsightComputeDuration,
			SchedulerDispatched,
		)
	})
}
