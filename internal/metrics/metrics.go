// Package metrics holds the Prometheus collectors of the artifact index service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics groups the collectors. Each instance registers its collectors with
// the registerer it was built with, so tests can use private registries.
type Metrics struct {
	// recordsInserted counts records fed to registry indexes
	recordsInserted *prometheus.CounterVec

	// records is the number of records currently served per registry
	records *prometheus.GaugeVec

	// queries counts searches by outcome
	queries *prometheus.CounterVec

	// queryDuration tracks search latency
	queryDuration *prometheus.HistogramVec

	// jobs counts finished background jobs by type and status
	jobs *prometheus.CounterVec

	// jobDuration tracks background job run time
	jobDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		recordsInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artifact_index_records_inserted_total",
			Help: "Total records inserted into registry indexes",
		}, []string{"registry"}),
		records: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "artifact_index_records",
			Help: "Records currently indexed per registry",
		}, []string{"registry"}),
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artifact_index_queries_total",
			Help: "Total searches by registry and outcome",
		}, []string{"registry", "outcome"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "artifact_index_query_duration_seconds",
			Help:    "Search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10µs to ~330ms
		}, []string{"registry"}),
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artifact_index_jobs_total",
			Help: "Total finished background jobs by type and status",
		}, []string{"type", "status"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "artifact_index_job_duration_seconds",
			Help:    "Background job duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}, []string{"type"}),
	}
}

// NewForTesting creates collectors on a private registry.
func NewForTesting() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return New(reg), reg
}

// RecordIndexed records that a registry index was (re)built or loaded with count records.
func (m *Metrics) RecordIndexed(registry string, inserted, count int) {
	if m == nil {
		return
	}
	m.recordsInserted.WithLabelValues(registry).Add(float64(inserted))
	m.records.WithLabelValues(registry).Set(float64(count))
}

// RecordQuery records one search.
func (m *Metrics) RecordQuery(registry, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(registry, outcome).Inc()
	m.queryDuration.WithLabelValues(registry).Observe(took.Seconds())
}

// RecordJob records a finished background job.
func (m *Metrics) RecordJob(jobType, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(jobType, status).Inc()
	m.jobDuration.WithLabelValues(jobType).Observe(took.Seconds())
}

// Forget drops the series of a removed registry.
func (m *Metrics) Forget(registry string) {
	if m == nil {
		return
	}
	m.records.DeleteLabelValues(registry)
	m.recordsInserted.DeleteLabelValues(registry)
	m.queryDuration.DeleteLabelValues(registry)
	for _, outcome := range []string{OutcomeOK, OutcomeInvalid, OutcomeError} {
		m.queries.DeleteLabelValues(registry, outcome)
	}
}
