// Package timeouts holds the deadlines handlers put around database and
// blob-store calls.
//
//   - Ping: health checks
//   - Short: single-document reads and writes, session refresh
//   - Medium: list queries, the admin queue, the city aggregation
//   - Long: uploads and deletes that also touch the blob store
//   - Batch: startup seeding and schema work
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure or ConfigureFromEnv overrides them.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }
func Batch() time.Duration  { return get(func(c Config) time.Duration { return c.Batch }) }

// Current returns a snapshot of the active values.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides the non-zero fields of cfg. Call it at startup,
// before handlers are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for _, f := range fields(&cur) {
		if v := f.from(cfg); v > 0 {
			*f.dst = v
		}
	}
}

// Reset restores the defaults. Tests use it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv reads NAGARSEVA_TIMEOUT_{PING,SHORT,MEDIUM,LONG,BATCH}
// as Go durations ("2s", "500ms"). Invalid or non-positive values are
// skipped. It returns how many values were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	n := 0
	for _, f := range fields(&cur) {
		v := os.Getenv("NAGARSEVA_TIMEOUT_" + f.env)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*f.dst = d
			n++
		}
	}
	return n
}

type field struct {
	env  string
	dst  *time.Duration
	from func(Config) time.Duration
}

func fields(c *Config) []field {
	return []field{
		{"PING", &c.Ping, func(x Config) time.Duration { return x.Ping }},
		{"SHORT", &c.Short, func(x Config) time.Duration { return x.Short }},
		{"MEDIUM", &c.Medium, func(x Config) time.Duration { return x.Medium }},
		{"LONG", &c.Long, func(x Config) time.Duration { return x.Long }},
		{"BATCH", &c.Batch, func(x Config) time.Duration { return x.Batch }},
	}
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
