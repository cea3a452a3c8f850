package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newsdigest/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the digest worker.
// It embeds the standard ConfigMetrics for configuration monitoring and
// adds worker-specific metrics for scheduled cycle tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp: Unix timestamp of last configuration load
//   - worker_config_validation_errors_total: Total validation errors by field
//   - worker_config_fallbacks_total: Total fallback operations by field
//   - worker_config_fallback_active: 1 if any fallback active, 0 otherwise
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: Total scheduled cycle runs by status
//   - worker_cron_job_duration_seconds: Duration histogram of cycle execution
//   - worker_cycle_recipients_delivered_total: Recipients delivered across runs
//   - worker_cron_job_last_success_timestamp: Unix timestamp of last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts scheduled cycle runs by status
	// (success, failure).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures cycle execution duration.
	// Buckets cover 1s through 30m, the realistic range for a cycle
	// that fetches providers and delivers with retries.
	CronJobDurationSeconds prometheus.Histogram

	// CycleRecipientsDeliveredTotal counts recipients delivered to
	// across all scheduled runs.
	CycleRecipientsDeliveredTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the Unix timestamp of the
	// last successful run. Alerting on staleness of this gauge catches
	// a silently stuck scheduler.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a new WorkerMetrics instance with all metrics
// initialized and registered with the default Prometheus registry.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of scheduled digest cycle runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of scheduled digest cycle execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CycleRecipientsDeliveredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cycle_recipients_delivered_total",
			Help: "Total number of recipients delivered to across all scheduled runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled digest cycle",
		}),
	}
}

// MustRegister is a no-op kept for the conventional initialization shape;
// metrics are auto-registered via promauto in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the run counter for the given status
// ("success" or "failure").
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a cycle run in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordRecipientsDelivered adds the number of recipients delivered to in
// this run to the running total.
func (m *WorkerMetrics) RecordRecipientsDelivered(count int) {
	m.CycleRecipientsDeliveredTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
