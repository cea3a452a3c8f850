package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Shared across tests: promauto panics if the same component name is
// registered twice in one process.
var testConfigMetrics = NewConfigMetrics("testcfg")

func TestNewConfigMetrics(t *testing.T) {
	if testConfigMetrics.LoadTimestamp == nil {
		t.Error("Expected LoadTimestamp to be initialized")
	}
	if testConfigMetrics.ValidationErrorsTotal == nil {
		t.Error("Expected ValidationErrorsTotal to be initialized")
	}
	if testConfigMetrics.FallbacksTotal == nil {
		t.Error("Expected FallbacksTotal to be initialized")
	}
	if testConfigMetrics.FallbackActive == nil {
		t.Error("Expected FallbackActive to be initialized")
	}
	if testConfigMetrics.componentName != "testcfg" {
		t.Errorf("Expected component name 'testcfg', got %q", testConfigMetrics.componentName)
	}
}

func TestConfigMetrics_RecordValidationError(t *testing.T) {
	before := testutil.ToFloat64(testConfigMetrics.ValidationErrorsTotal.WithLabelValues("schedule"))

	testConfigMetrics.RecordValidationError("schedule")
	testConfigMetrics.RecordValidationError("schedule")

	after := testutil.ToFloat64(testConfigMetrics.ValidationErrorsTotal.WithLabelValues("schedule"))
	if after-before != 2 {
		t.Errorf("Expected counter to increase by 2, got %v", after-before)
	}
}

func TestConfigMetrics_RecordFallback(t *testing.T) {
	before := testutil.ToFloat64(testConfigMetrics.FallbacksTotal.WithLabelValues("timezone"))

	testConfigMetrics.RecordFallback("timezone", "default")

	after := testutil.ToFloat64(testConfigMetrics.FallbacksTotal.WithLabelValues("timezone"))
	if after-before != 1 {
		t.Errorf("Expected counter to increase by 1, got %v", after-before)
	}
}

func TestConfigMetrics_SetFallbackActive(t *testing.T) {
	testConfigMetrics.SetFallbackActive("schedule", true)
	if got := testutil.ToFloat64(testConfigMetrics.FallbackActive); got != 1 {
		t.Errorf("Expected gauge to be 1 when fallback active, got %v", got)
	}

	testConfigMetrics.SetFallbackActive("schedule", false)
	if got := testutil.ToFloat64(testConfigMetrics.FallbackActive); got != 0 {
		t.Errorf("Expected gauge to be 0 when fallback cleared, got %v", got)
	}
}

func TestConfigMetrics_RecordLoadTimestamp(t *testing.T) {
	testConfigMetrics.RecordLoadTimestamp()

	if got := testutil.ToFloat64(testConfigMetrics.LoadTimestamp); got <= 0 {
		t.Errorf("Expected load timestamp to be set, got %v", got)
	}
}
