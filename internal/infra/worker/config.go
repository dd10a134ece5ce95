package worker

import (
	"log/slog"
	"time"

	"blotter/internal/pkg/config"
)

// Config controls the cron worker's schedule and resource limits.
// Every field is fail-open: a missing or malformed environment value
// falls back to its default and logs a warning rather than aborting
// startup.
type Config struct {
	CronSchedule   string
	Timezone       string
	HealthAddr     string
	RefreshTimeout time.Duration
	SourceFanOut   int
}

// DefaultConfig returns the worker's built-in defaults, used whenever
// an environment value is absent or invalid.
func DefaultConfig() Config {
	return Config{
		CronSchedule:   "*/15 * * * *",
		Timezone:       "UTC",
		HealthAddr:     ":9091",
		RefreshTimeout: 10 * time.Minute,
		SourceFanOut:   4,
	}
}

// LoadConfigFromEnv builds a Config from environment variables,
// falling back to DefaultConfig's values field-by-field on any
// validation failure.
func LoadConfigFromEnv(logger *slog.Logger) Config {
	d := DefaultConfig()
	return Config{
		CronSchedule:   config.LoadEnvString(logger, "WORKER_CRON_SCHEDULE", d.CronSchedule, config.ValidateCronSchedule),
		Timezone:       config.LoadEnvString(logger, "WORKER_TIMEZONE", d.Timezone, config.ValidateTimezone),
		HealthAddr:     config.LoadEnvString(logger, "WORKER_HEALTH_ADDR", d.HealthAddr, nil),
		RefreshTimeout: config.LoadEnvDuration(logger, "WORKER_REFRESH_TIMEOUT", d.RefreshTimeout, func(dur time.Duration) error {
			return config.ValidateDurationRange(dur, 30*time.Second, time.Hour)
		}),
		SourceFanOut: config.LoadEnvInt(logger, "WORKER_SOURCE_FANOUT", d.SourceFanOut, func(n int) error {
			return config.ValidateIntRange(n, 1, 16)
		}),
	}
}
