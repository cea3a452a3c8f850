package worker

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// globalTestMetrics is a shared metrics instance for tests to avoid
// duplicate Prometheus registration across test functions.
var globalTestMetrics = NewWorkerMetrics()

func TestNewWorkerMetrics(t *testing.T) {
	metrics := globalTestMetrics

	if metrics == nil {
		t.Fatal("NewWorkerMetrics returned nil")
	}
	if metrics.ConfigMetrics == nil {
		t.Error("ConfigMetrics is nil")
	}
	if metrics.CronJobRunsTotal == nil {
		t.Error("CronJobRunsTotal is nil")
	}
	if metrics.CronJobDurationSeconds == nil {
		t.Error("CronJobDurationSeconds is nil")
	}
	if metrics.CycleRecipientsDeliveredTotal == nil {
		t.Error("CycleRecipientsDeliveredTotal is nil")
	}
	if metrics.CronJobLastSuccessTimestamp == nil {
		t.Error("CronJobLastSuccessTimestamp is nil")
	}

	// Should not panic; metrics are auto-registered via promauto.
	metrics.MustRegister()
}

func TestWorkerMetrics_RecordJobRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_worker_cron_job_runs_total",
		Help: "Test counter",
	}, []string{"status"})
	reg.MustRegister(counter)

	metrics := &WorkerMetrics{CronJobRunsTotal: counter}

	metrics.RecordJobRun("success")
	metrics.RecordJobRun("success")
	metrics.RecordJobRun("failure")

	if got := testutil.ToFloat64(counter.WithLabelValues("success")); got != 2 {
		t.Errorf("Expected 2 success runs, got %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("failure")); got != 1 {
		t.Errorf("Expected 1 failure run, got %v", got)
	}
}

func TestWorkerMetrics_RecordRecipientsDelivered(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_worker_cycle_recipients_delivered_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)

	metrics := &WorkerMetrics{CycleRecipientsDeliveredTotal: counter}

	metrics.RecordRecipientsDelivered(3)
	metrics.RecordRecipientsDelivered(2)

	if got := testutil.ToFloat64(counter); got != 5 {
		t.Errorf("Expected 5 recipients delivered, got %v", got)
	}
}

func TestWorkerMetrics_RecordLastSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_worker_cron_job_last_success_timestamp",
		Help: "Test gauge",
	})
	reg.MustRegister(gauge)

	metrics := &WorkerMetrics{CronJobLastSuccessTimestamp: gauge}

	metrics.RecordLastSuccess()

	if got := testutil.ToFloat64(gauge); got <= 0 {
		t.Errorf("Expected positive timestamp, got %v", got)
	}
}

func TestWorkerMetrics_RecordJobDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_worker_cron_job_duration_seconds",
		Help:    "Test histogram",
		Buckets: []float64{1, 5, 30},
	})
	reg.MustRegister(hist)

	metrics := &WorkerMetrics{CronJobDurationSeconds: hist}

	metrics.RecordJobDuration(2.5)
	metrics.RecordJobDuration(12.0)

	if got := testutil.CollectAndCount(hist); got != 1 {
		t.Errorf("Expected 1 histogram metric, got %d", got)
	}
}
