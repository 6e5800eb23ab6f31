package config

import (
	"time"
)

// SensitiveString holds secrets that must never appear in logs or dumps.
type SensitiveString string

func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// Value returns the underlying secret.
func (s SensitiveString) Value() string {
	return string(s)
}

// Config is the application configuration tree. Koanf tags drive loading,
// validate tags drive validation.
type Config struct {
	Server       ServerConfig       `koanf:"server"       validate:"required"`
	Log          LogConfig          `koanf:"log"`
	Cache        CacheConfig        `koanf:"cache"`
	Classifier   ClassifierConfig   `koanf:"classifier"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator"`
	Tools        ToolsConfig        `koanf:"tools"`
	Monitoring   MonitoringConfig   `koanf:"monitoring"`
}

type ServerConfig struct {
	Host        string        `koanf:"host"         validate:"required"`
	Port        int           `koanf:"port"         validate:"min=1,max=65535"`
	CORSEnabled bool          `koanf:"cors_enabled"`
	CORS        CORSConfig    `koanf:"cors"`
	Timeout     time.Duration `koanf:"timeout"`
	BatchLimit  int           `koanf:"batch_limit"  validate:"min=1"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

type CacheConfig struct {
	Driver         string          `koanf:"driver" validate:"omitempty,oneof=redis memory"`
	URL            SensitiveString `koanf:"url"`
	Host           string          `koanf:"host"`
	Port           int             `koanf:"port"`
	Password       SensitiveString `koanf:"password"`
	DB             int             `koanf:"db"`
	PingTimeout    time.Duration   `koanf:"ping_timeout"`
	MemoryCapacity int             `koanf:"memory_capacity"`
	GraceFactor    int             `koanf:"grace_factor" validate:"omitempty,min=1"`
	TTLRealtime    time.Duration   `koanf:"ttl_realtime"`
	TTLShort       time.Duration   `koanf:"ttl_short"`
	TTLMedium      time.Duration   `koanf:"ttl_medium"`
	TTLLong        time.Duration   `koanf:"ttl_long"`
}

type ClassifierConfig struct {
	Model       string          `koanf:"model"`
	APIKey      SensitiveString `koanf:"api_key"`
	BaseURL     string          `koanf:"base_url"`
	Temperature float64         `koanf:"temperature" validate:"min=0,max=2"`
	MaxTokens   int             `koanf:"max_tokens"  validate:"omitempty,min=1"`
	MemoWindow  time.Duration   `koanf:"memo_window"`
}

type OrchestratorConfig struct {
	MaxConcurrent    int                      `koanf:"max_concurrent" validate:"omitempty,min=1"`
	GlobalTimeout    time.Duration            `koanf:"global_timeout"`
	ToolTimeouts     map[string]time.Duration `koanf:"tool_timeouts"`
	MaxRetries       uint64                   `koanf:"max_retries"`
	BatchConcurrency int                      `koanf:"batch_concurrency" validate:"omitempty,min=1"`
}

// ToolConfig is the upstream endpoint settings for one tool.
type ToolConfig struct {
	BaseURL string          `koanf:"base_url"`
	APIKey  SensitiveString `koanf:"api_key"`
	Timeout time.Duration   `koanf:"timeout"`
}

// ToolsConfig holds shared endpoint defaults plus per-tool overrides keyed by
// tool name.
type ToolsConfig struct {
	Default   ToolConfig            `koanf:"default"`
	Overrides map[string]ToolConfig `koanf:"overrides"`
}

// Resolve returns the effective settings for one tool, applying overrides on
// top of the shared defaults.
func (t *ToolsConfig) Resolve(name string) ToolConfig {
	cfg := t.Default
	override, ok := t.Overrides[name]
	if !ok {
		return cfg
	}
	if override.BaseURL != "" {
		cfg.BaseURL = override.BaseURL
	}
	if override.APIKey != "" {
		cfg.APIKey = override.APIKey
	}
	if override.Timeout > 0 {
		cfg.Timeout = override.Timeout
	}
	return cfg
}

type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Default returns the built-in configuration all sources overlay.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       8080,
			Timeout:    30 * time.Second,
			BatchLimit: 20,
		},
		Log: LogConfig{
			Level: "info",
		},
		Cache: CacheConfig{
			Driver:         "memory",
			Host:           "localhost",
			Port:           6379,
			PingTimeout:    2 * time.Second,
			MemoryCapacity: 4096,
			GraceFactor:    2,
			TTLRealtime:    30 * time.Second,
			TTLShort:       10 * time.Minute,
			TTLMedium:      time.Hour,
			TTLLong:        24 * time.Hour,
		},
		Classifier: ClassifierConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
			MaxTokens:   512,
			MemoWindow:  2 * time.Minute,
		},
		Orchestrator: OrchestratorConfig{
			MaxConcurrent:    8,
			GlobalTimeout:    15 * time.Second,
			MaxRetries:       1,
			BatchConcurrency: 4,
		},
		Tools: ToolsConfig{
			Default: ToolConfig{
				Timeout: 10 * time.Second,
			},
		},
		Monitoring: MonitoringConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
