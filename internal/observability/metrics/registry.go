// Package metrics provides centralized Prometheus metrics for the
// digest pipeline: cycle runs, provider fetches, deliveries, and
// recipient store operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle metrics track end-to-end digest generation runs
var (
	// CycleRunsTotal counts digest cycles by outcome
	CycleRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_cycle_runs_total",
			Help: "Total number of digest cycles run",
		},
		[]string{"status"}, // status: success|failure
	)

	// CycleDuration measures end-to-end cycle duration
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_cycle_duration_seconds",
			Help:    "End-to-end digest cycle duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// CycleRecipients tracks delivery outcomes of the most recent cycle
	CycleRecipients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "digest_cycle_recipients",
			Help: "Recipient delivery outcomes of the most recent cycle",
		},
		[]string{"outcome"}, // outcome: delivered|failed
	)
)

// Provider metrics track content fragment fetches
var (
	// ProviderFetchesTotal counts fragment fetches per provider section
	ProviderFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_provider_fetches_total",
			Help: "Total number of provider fetches",
		},
		[]string{"section", "result"}, // result: success|fallback
	)

	// ProviderFetchDuration measures per-provider fetch duration
	ProviderFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_provider_fetch_duration_seconds",
			Help:    "Provider fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"section"},
	)
)

// Delivery metrics track the per-recipient dispatch loop
var (
	// DeliveryAttemptsTotal counts individual delivery attempts
	DeliveryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_delivery_attempts_total",
			Help: "Total number of delivery attempts",
		},
		[]string{"result"}, // result: success|failure
	)

	// DeliveriesTotal counts terminal per-recipient outcomes
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_deliveries_total",
			Help: "Total number of terminal per-recipient delivery outcomes",
		},
		[]string{"outcome"}, // outcome: delivered|exhausted
	)

	// DeliveryDuration measures a single delivery attempt
	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_delivery_duration_seconds",
			Help:    "Single delivery attempt duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
	)
)

// Store metrics track recipient store operations
var (
	// StoreOperationsTotal counts recipient store operations
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_store_operations_total",
			Help: "Total number of recipient store operations",
		},
		[]string{"operation", "status"}, // operation: list|add|remove
	)

	// RecipientsTotal tracks the current size of the recipient set
	RecipientsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_recipients_total",
			Help: "Current number of subscribed recipients",
		},
	)
)

// Archive metrics track snapshot persistence
var (
	// ArchiveWritesTotal counts archive snapshot writes by outcome
	ArchiveWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_archive_writes_total",
			Help: "Total number of archive snapshot writes",
		},
		[]string{"status"}, // status: success|failure
	)
)
