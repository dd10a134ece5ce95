package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

func warn(logger *slog.Logger, key, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("config: using fallback value", slog.String("key", key), slog.String("reason", reason))
}

// LoadEnvString reads key from the environment, falling back to
// fallback when unset or when validate rejects the raw value. A nil
// validate accepts anything non-empty-env-var.
func LoadEnvString(logger *slog.Logger, key, fallback string, validate func(string) error) string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		warn(logger, key, "not set")
		return fallback
	}
	if validate != nil {
		if err := validate(raw); err != nil {
			warn(logger, key, err.Error())
			return fallback
		}
	}
	return raw
}

// LoadEnvInt reads an integer-valued env var, falling back on parse or
// validation failure.
func LoadEnvInt(logger *slog.Logger, key string, fallback int, validate func(int) error) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		warn(logger, key, "not set")
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		warn(logger, key, "not an integer: "+err.Error())
		return fallback
	}
	if validate != nil {
		if err := validate(v); err != nil {
			warn(logger, key, err.Error())
			return fallback
		}
	}
	return v
}

// LoadEnvDuration reads a duration-valued env var (Go duration syntax,
// e.g. "45s"), falling back on parse or validation failure.
func LoadEnvDuration(logger *slog.Logger, key string, fallback time.Duration, validate func(time.Duration) error) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		warn(logger, key, "not set")
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		warn(logger, key, "not a duration: "+err.Error())
		return fallback
	}
	if validate != nil {
		if err := validate(d); err != nil {
			warn(logger, key, err.Error())
			return fallback
		}
	}
	return d
}
