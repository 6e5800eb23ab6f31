package orchestrator

import (
	"time"

	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/tool"
)

const (
	defaultMaxConcurrent  = 8
	defaultGlobalTimeout  = 15 * time.Second
	defaultRetryBase      = 150 * time.Millisecond
	defaultRetriesOnError = 1
)

// Config controls the concurrency envelope of a tool fan-out.
type Config struct {
	// MaxConcurrent bounds the number of tools running at once.
	MaxConcurrent int `koanf:"max_concurrent" validate:"omitempty,min=1"`
	// GlobalTimeout caps the whole fan-out regardless of per-tool budgets.
	GlobalTimeout time.Duration `koanf:"global_timeout"`
	// ToolTimeouts overrides the per-tool budget derived from the TTL class.
	ToolTimeouts map[string]time.Duration `koanf:"tool_timeouts"`
	// RetryBase seeds the exponential backoff between retry attempts.
	RetryBase time.Duration `koanf:"retry_base"`
	// MaxRetries is the number of additional attempts after the first call.
	// Only transient failures are retried.
	MaxRetries uint64 `koanf:"max_retries"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent: defaultMaxConcurrent,
		GlobalTimeout: defaultGlobalTimeout,
		RetryBase:     defaultRetryBase,
		MaxRetries:    defaultRetriesOnError,
	}
}

func (c *Config) normalize() {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
	if c.GlobalTimeout <= 0 {
		c.GlobalTimeout = defaultGlobalTimeout
	}
	if c.RetryBase <= 0 {
		c.RetryBase = defaultRetryBase
	}
}

// classTimeouts maps freshness tiers to per-tool deadlines. Live data must
// answer fast or not at all; archival sources get more room.
var classTimeouts = map[cache.TTLClass]time.Duration{
	cache.TTLRealtime: 3 * time.Second,
	cache.TTLShort:    5 * time.Second,
	cache.TTLMedium:   8 * time.Second,
	cache.TTLLong:     10 * time.Second,
}

func (c *Config) timeoutFor(t tool.Tool) time.Duration {
	if d, ok := c.ToolTimeouts[t.Name()]; ok && d > 0 {
		return d
	}
	if d, ok := classTimeouts[t.TTLClass()]; ok {
		return d
	}
	return classTimeouts[cache.TTLRealtime]
}
