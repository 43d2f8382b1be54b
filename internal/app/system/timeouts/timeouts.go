// Package timeouts holds the context deadlines handlers put around database
// work.
//
//   - Ping: health checks
//   - Short: single-document reads and lookups
//   - Medium: list queries and simple writes
//   - Long: writes that touch several collections (profile cascade, signin)
package timeouts

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure or ConfigureFromEnv changes them.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// EnvPrefix is prepended to PING, SHORT, MEDIUM and LONG by ConfigureFromEnv.
const EnvPrefix = "HIMATIKA_TIMEOUT_"

var (
	mu      sync.RWMutex
	current = defaults()
)

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func defaults() Config {
	return Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

// Ping returns the health-check timeout.
func Ping() time.Duration { return Current().Ping }

// Short returns the timeout for single-document operations.
func Short() time.Duration { return Current().Short }

// Medium returns the timeout for list queries and simple writes.
func Medium() time.Duration { return Current().Medium }

// Long returns the timeout for multi-collection writes.
func Long() time.Duration { return Current().Long }

// Current returns a copy of the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Configure overrides the non-zero fields of cfg. Call it at startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set(&current.Ping, cfg.Ping)
	set(&current.Short, cfg.Short)
	set(&current.Medium, cfg.Medium)
	set(&current.Long, cfg.Long)
}

func set(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores the defaults. Tests use it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// ConfigureFromEnv reads HIMATIKA_TIMEOUT_PING, _SHORT, _MEDIUM and _LONG
// (Go durations such as "500ms" or "2m"). Invalid or non-positive values
// are logged and skipped. It returns how many values were applied.
func ConfigureFromEnv(logger *zap.Logger) int {
	var cfg Config
	n := 0
	for _, e := range []struct {
		name string
		dst  *time.Duration
	}{
		{"PING", &cfg.Ping},
		{"SHORT", &cfg.Short},
		{"MEDIUM", &cfg.Medium},
		{"LONG", &cfg.Long},
	} {
		v := os.Getenv(EnvPrefix + e.name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			if logger != nil {
				logger.Warn("ignoring invalid timeout", zap.String("var", EnvPrefix+e.name), zap.String("value", v))
			}
			continue
		}
		*e.dst = d
		n++
	}
	Configure(cfg)
	return n
}
