package cache

import "time"

// Driver selects the backing store implementation.
type Driver string

const (
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

// Config carries backend connection info plus cache behavior settings. It is
// built once at process start from the app configuration.
type Config struct {
	Driver Driver `koanf:"driver" validate:"omitempty,oneof=redis memory"`

	// Redis connection settings, used when Driver == redis.
	URL         string        `koanf:"url"`
	Host        string        `koanf:"host"`
	Port        string        `koanf:"port"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"`
	PingTimeout time.Duration `koanf:"ping_timeout"`

	// MemoryCapacity bounds each TTL-class shard of the in-memory store.
	MemoryCapacity int `koanf:"memory_capacity" validate:"omitempty,min=1"`

	// GraceFactor multiplies a class TTL to form the stale-serve window.
	GraceFactor int `koanf:"grace_factor" validate:"omitempty,min=1"`

	Durations Durations `koanf:"ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		Driver:         DriverMemory,
		Host:           "localhost",
		Port:           "6379",
		PingTimeout:    5 * time.Second,
		MemoryCapacity: 4096,
		GraceFactor:    2,
		Durations:      DefaultDurations(),
	}
}

func (c *Config) normalize() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.GraceFactor < 1 {
		c.GraceFactor = 2
	}
	if c.MemoryCapacity < 1 {
		c.MemoryCapacity = 4096
	}
	var zero Durations
	if c.Durations == zero {
		c.Durations = DefaultDurations()
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 5 * time.Second
	}
}
