package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Backend               time.Duration // Per-request timeout for backend calls
	Device                time.Duration // Per-transaction timeout on the register bus
	RetryMaxAttempts      int           // Attempts for idempotent backend calls, including the first
	RetryInitialDelay     time.Duration // Initial delay between retries
	InvalidSelectionPause time.Duration // Pause after an invalid menu choice
	MetricsPush           time.Duration // Timeout for a Pushgateway push
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - APM_TIMEOUT_BACKEND (default: 10s)
//   - APM_TIMEOUT_DEVICE (default: 3s)
//   - APM_RETRY_MAX_ATTEMPTS (default: 3)
//   - APM_RETRY_INITIAL_DELAY (default: 500ms)
//   - APM_INVALID_SELECTION_PAUSE (default: 500ms)
//   - APM_TIMEOUT_METRICS_PUSH (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Backend:               parseDuration("APM_TIMEOUT_BACKEND", 10*time.Second),
		Device:                parseDuration("APM_TIMEOUT_DEVICE", 3*time.Second),
		RetryMaxAttempts:      parseInt("APM_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay:     parseDuration("APM_RETRY_INITIAL_DELAY", 500*time.Millisecond),
		InvalidSelectionPause: parseDuration("APM_INVALID_SELECTION_PAUSE", 500*time.Millisecond),
		MetricsPush:           parseDuration("APM_TIMEOUT_METRICS_PUSH", 5*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
