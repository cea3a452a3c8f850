package metrics

import "time"

// RecordCycle records the outcome and duration of a digest cycle.
func RecordCycle(succeeded bool, duration time.Duration) {
	status := "success"
	if !succeeded {
		status = "failure"
	}
	CycleRunsTotal.WithLabelValues(status).Inc()
	CycleDuration.Observe(duration.Seconds())
}

// RecordCycleOutcomes sets the delivered/failed gauges for the most
// recent cycle.
func RecordCycleOutcomes(delivered, failed int) {
	CycleRecipients.WithLabelValues("delivered").Set(float64(delivered))
	CycleRecipients.WithLabelValues("failed").Set(float64(failed))
}

// RecordProviderFetch records a single provider fetch. A fetch that
// produced a fallback fragment is counted as "fallback".
func RecordProviderFetch(section string, fallback bool, duration time.Duration) {
	result := "success"
	if fallback {
		result = "fallback"
	}
	ProviderFetchesTotal.WithLabelValues(section, result).Inc()
	ProviderFetchDuration.WithLabelValues(section).Observe(duration.Seconds())
}

// RecordDeliveryAttempt records one delivery attempt against one
// recipient.
func RecordDeliveryAttempt(succeeded bool, duration time.Duration) {
	result := "success"
	if !succeeded {
		result = "failure"
	}
	DeliveryAttemptsTotal.WithLabelValues(result).Inc()
	DeliveryDuration.Observe(duration.Seconds())
}

// RecordDeliveryOutcome records the terminal outcome for one recipient.
func RecordDeliveryOutcome(delivered bool) {
	outcome := "delivered"
	if !delivered {
		outcome = "exhausted"
	}
	DeliveriesTotal.WithLabelValues(outcome).Inc()
}

// RecordStoreOperation records a recipient store operation.
func RecordStoreOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	StoreOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordArchiveWrite records an archive snapshot write.
func RecordArchiveWrite(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	ArchiveWritesTotal.WithLabelValues(status).Inc()
}
