package provider

import (
	"time"

	"newsdigest/internal/observability/metrics"
)

// FetchMetricsRecorder records the outcome of provider fetches. The
// interface exists so tests can inject a mock recorder instead of the
// shared Prometheus registry.
type FetchMetricsRecorder interface {
	// RecordFetch records one fetch for a section. success is false
	// when the provider gave up and the caller will substitute the
	// fallback fragment.
	RecordFetch(section string, success bool, duration time.Duration)
}

// PrometheusFetchMetrics records fetch outcomes to the shared
// Prometheus registry.
type PrometheusFetchMetrics struct{}

// NewPrometheusFetchMetrics returns the production metrics recorder.
func NewPrometheusFetchMetrics() *PrometheusFetchMetrics {
	return &PrometheusFetchMetrics{}
}

// RecordFetch implements FetchMetricsRecorder.
func (p *PrometheusFetchMetrics) RecordFetch(section string, success bool, duration time.Duration) {
	metrics.RecordProviderFetch(section, !success, duration)
}
