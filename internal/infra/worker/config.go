package worker

import (
	"fmt"
	"log/slog"
	"time"

	"newsdigest/internal/pkg/config"
)

// WorkerConfig holds the configuration for the digest worker component.
// It controls the cron schedule, timezone, delivery concurrency, and the
// per-cycle timeout.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can operate
// safely even with invalid or missing configuration.
type WorkerConfig struct {
	// CronSchedule is the cron expression for digest cycle scheduling.
	// Format: "minute hour day month weekday"
	// Example: "30 6 * * *" (every day at 6:30)
	// Default: "30 6 * * *"
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Example: "UTC", "Asia/Tokyo", "America/New_York"
	// Default: "UTC"
	Timezone string

	// DispatchMaxConcurrent is the maximum number of recipients delivered
	// to simultaneously during a cycle.
	// Range: 1-50
	// Default: 4
	DispatchMaxConcurrent int

	// CycleTimeout is the maximum duration for a single digest cycle.
	// After this timeout, provider fetches and deliveries are cancelled.
	// Default: 10 minutes
	CycleTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production-ready defaults:
// a daily morning digest, a 10-minute cap on cycle duration, and modest
// delivery concurrency that stays under typical relay rate limits.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:          "30 6 * * *",
		Timezone:              "UTC",
		DispatchMaxConcurrent: 4,
		CycleTimeout:          10 * time.Minute,
		HealthPort:            9091,
	}
}

// Validate checks if the configuration values are valid.
// If multiple fields are invalid, all errors are collected and returned
// together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.DispatchMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("dispatch max concurrent: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.CycleTimeout); err != nil {
		errs = append(errs, fmt.Errorf("cycle timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy: each field is loaded
// and validated independently; an invalid value falls back to its default
// with a warning log and a metrics increment, and the function never
// returns an error.
//
// Environment variables:
//   - DIGEST_SCHEDULE: Cron expression (default: "30 6 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - DISPATCH_MAX_CONCURRENT: Integer 1-50 (default: 4)
//   - CYCLE_TIMEOUT: Duration string, e.g., "10m" (default: 10 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("DIGEST_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("digest_schedule")
		metrics.RecordFallback("digest_schedule", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "CronSchedule"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("timezone")
		metrics.RecordFallback("timezone", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "Timezone"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("DISPATCH_MAX_CONCURRENT", cfg.DispatchMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.DispatchMaxConcurrent = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("dispatch_max_concurrent")
		metrics.RecordFallback("dispatch_max_concurrent", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "DispatchMaxConcurrent"),
				slog.String("warning", warning))
		}
	}

	// Cycle timeout is bounded to 1m-2h: shorter cannot finish a real
	// dispatch with retries, longer would overlap the next cycle.
	result = config.LoadEnvDuration("CYCLE_TIMEOUT", cfg.CycleTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 2*time.Hour)
	})
	cfg.CycleTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("cycle_timeout")
		metrics.RecordFallback("cycle_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "CycleTimeout"),
				slog.String("warning", warning))
		}
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("health_port")
		metrics.RecordFallback("health_port", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "HealthPort"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
