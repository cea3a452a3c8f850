// Package config provides fail-open environment configuration loading:
// every loader returns a usable value, falling back to the supplied
// default with a warning when the environment holds garbage. Components
// that must not refuse to start over a typo (the digest worker above
// all) build their Load*FromEnv functions on top of these helpers.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult is the outcome of loading one configuration value.
// Value always holds something usable; FallbackApplied reports whether
// it is the default because the environment value failed to parse or
// validate, with the reason recorded in Warnings.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// fallbackResult builds the result for a rejected environment value.
func fallbackResult(envKey, raw string, reason error, defaultValue interface{}) ConfigLoadResult {
	return ConfigLoadResult{
		Value:           defaultValue,
		FallbackApplied: true,
		Warnings: []string{fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'",
			envKey, raw, reason, defaultValue,
		)},
	}
}

// acceptedResult builds the result for a value taken as-is. An unset
// variable taking the default is not a fallback; only rejection is.
func acceptedResult(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

// LoadEnvString reads a string from the environment with no validation,
// returning defaultValue when the variable is unset or empty.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback reads a string and runs it through validator (nil
// skips validation). A value that fails validation is replaced by the
// default with a warning; the function never returns an error.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return acceptedResult(defaultValue)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallbackResult(envKey, value, err, defaultValue)
		}
	}
	return acceptedResult(value)
}

// LoadEnvDuration reads a Go duration string ("30s", "1h30m") and runs
// it through validator. Parse and validation failures both fall back to
// the default with a warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return acceptedResult(defaultValue)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallbackResult(envKey, raw, err, defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, raw, err, defaultValue)
		}
	}
	return acceptedResult(parsed)
}

// LoadEnvInt reads an integer and runs it through validator. Parse and
// validation failures both fall back to the default with a warning.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return acceptedResult(defaultValue)
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallbackResult(envKey, raw, fmt.Errorf("invalid integer format"), defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, raw, err, defaultValue)
		}
	}
	return acceptedResult(parsed)
}

// LoadEnvBool reads a boolean, accepting the strconv.ParseBool token set
// (1/t/T/TRUE/true/True and the false equivalents). Anything else falls
// back to the default with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return acceptedResult(defaultValue)
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallbackResult(envKey, raw, fmt.Errorf("invalid boolean format, expected 'true' or 'false'"), defaultValue)
	}
	return acceptedResult(parsed)
}
