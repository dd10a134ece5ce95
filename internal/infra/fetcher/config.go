package fetcher

import (
	"fmt"
	"time"
)

// Config holds the configuration for C1 fetch operations: per-request
// timeout, retry policy knobs, and SSRF/size guards (spec §4.1).
type Config struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 30s.
	Timeout time.Duration

	// TotalBudget bounds total elapsed time across all retries for one
	// logical fetch call, independent of remaining retry attempts.
	// Default: 45s.
	TotalBudget time.Duration

	// MaxRetries is the maximum number of retry attempts after the
	// first try (2 retries = 3 attempts total). Default: 2.
	MaxRetries int

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Default: 10MB.
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// Default: 5.
	MaxRedirects int

	// DenyPrivateIPs blocks URLs resolving to private/loopback/link-local
	// IPs (SSRF prevention) by running entity.ValidateURL on the request
	// URL and every redirect target. When false, that validation is
	// skipped entirely. Default: true.
	DenyPrivateIPs bool

	// UserAgent is sent on every outbound request.
	UserAgent string
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		TotalBudget:    45 * time.Second,
		MaxRetries:     2,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "BlotterBot/1.0",
	}
}

// Validate checks the configuration values are sane.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.TotalBudget <= 0 {
		return fmt.Errorf("total budget must be positive, got %v", c.TotalBudget)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 0 and 10, got %d", c.MaxRetries)
	}
	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}
