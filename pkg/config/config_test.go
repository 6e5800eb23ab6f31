package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should load built-in defaults without sources", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "memory", cfg.Cache.Driver)
		assert.Equal(t, 30*time.Second, cfg.Cache.TTLRealtime)
		assert.Equal(t, 24*time.Hour, cfg.Cache.TTLLong)
		assert.True(t, cfg.Monitoring.Enabled)
	})

	t.Run("Should overlay a YAML file on defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "howzat.yaml")
		content := []byte("server:\n  port: 9090\ncache:\n  driver: redis\n  host: redis.internal\n")
		require.NoError(t, os.WriteFile(path, content, 0o600))
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "redis", cfg.Cache.Driver)
		assert.Equal(t, "redis.internal", cfg.Cache.Host)
		// Untouched keys keep their defaults.
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	})

	t.Run("Should let environment variables win over the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "howzat.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))
		t.Setenv("HOWZAT_SERVER_PORT", "7070")
		t.Setenv("HOWZAT_CLASSIFIER_API_KEY", "sk-test")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "sk-test", cfg.Classifier.APIKey.Value())
	})

	t.Run("Should parse durations from strings", func(t *testing.T) {
		t.Setenv("HOWZAT_CACHE_TTL_REALTIME", "45s")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 45*time.Second, cfg.Cache.TTLRealtime)
	})

	t.Run("Should reject an out-of-range port", func(t *testing.T) {
		t.Setenv("HOWZAT_SERVER_PORT", "70000")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestSensitiveString(t *testing.T) {
	t.Run("Should redact secrets when printed", func(t *testing.T) {
		secret := SensitiveString("sk-secret")
		assert.Equal(t, "[REDACTED]", secret.String())
		assert.Equal(t, "sk-secret", secret.Value())
		assert.Equal(t, "", SensitiveString("").String())
	})
}

func TestToolsConfig_Resolve(t *testing.T) {
	t.Run("Should apply per-tool overrides on shared defaults", func(t *testing.T) {
		tools := ToolsConfig{
			Default: ToolConfig{BaseURL: "http://gateway", Timeout: 10 * time.Second},
			Overrides: map[string]ToolConfig{
				"livescores": {BaseURL: "http://live-feed", Timeout: 2 * time.Second},
			},
		}
		live := tools.Resolve("livescores")
		assert.Equal(t, "http://live-feed", live.BaseURL)
		assert.Equal(t, 2*time.Second, live.Timeout)

		other := tools.Resolve("weather")
		assert.Equal(t, "http://gateway", other.BaseURL)
	})
}

func TestFromContext(t *testing.T) {
	t.Run("Should round-trip through context and default when absent", func(t *testing.T) {
		cfg := Default()
		cfg.Server.Port = 9999
		ctx := ContextWithConfig(context.Background(), cfg)
		assert.Equal(t, 9999, FromContext(ctx).Server.Port)
		assert.Equal(t, 8080, FromContext(context.Background()).Server.Port)
	})
}
