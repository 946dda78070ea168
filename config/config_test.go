package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "domdebug", cfg.Logger.ServiceName)
	assert.Equal(t, "dom-debug", cfg.Inspector.Prefix)
	assert.Equal(t, []string{"backgroundColor", "color", "fontSize", "padding", "border", "borderRadius"}, cfg.Inspector.Properties)
	assert.Equal(t, 1500*time.Millisecond, cfg.Inspector.CopyResetDelay)
	assert.Equal(t, 1024.0, cfg.Viewport.Width)
	assert.Equal(t, 768.0, cfg.Viewport.Height)
	assert.Equal(t, 30*time.Second, cfg.Network.Timeout)
	assert.True(t, cfg.Script.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domdebug.yaml")
	content := `
logger:
  level: debug
  format: json
inspector:
  prefix: qa
  properties: [color, margin]
  copy_reset_delay: 2s
viewport:
  width: 640
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "qa", cfg.Inspector.Prefix)
	assert.Equal(t, []string{"color", "margin"}, cfg.Inspector.Properties)
	assert.Equal(t, 2*time.Second, cfg.Inspector.CopyResetDelay)
	assert.Equal(t, 640.0, cfg.Viewport.Width)
	assert.Equal(t, 768.0, cfg.Viewport.Height, "unset keys keep their default")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DOMDEBUG_LOGGER_LEVEL", "warn")
	t.Setenv("DOMDEBUG_INSPECTOR_COPY_RESET_DELAY", "250ms")
	t.Setenv("DOMDEBUG_NETWORK_USER_AGENT", "qa/2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Inspector.CopyResetDelay)
	assert.Equal(t, "qa/2", cfg.Network.UserAgent)
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	content := "logger:\n  log_file: ~/logs/domdebug.log\nnetwork:\n  rate_limit: 2.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "domdebug.yaml"), []byte(content), 0o644))

	cfg, err := Load("~/domdebug.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "domdebug.log"), cfg.Logger.LogFile)
	assert.Equal(t, 2.5, cfg.Network.RateLimit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Logger.Format = "xml" }},
		{"empty prefix", func(c *Config) { c.Inspector.Prefix = "" }},
		{"prefix with dot", func(c *Config) { c.Inspector.Prefix = "a.b" }},
		{"no properties", func(c *Config) { c.Inspector.Properties = nil }},
		{"repeated property", func(c *Config) { c.Inspector.Properties = []string{"color", "color"} }},
		{"delay", func(c *Config) { c.Inspector.CopyResetDelay = 0 }},
		{"viewport", func(c *Config) { c.Viewport.Height = -1 }},
		{"timeout", func(c *Config) { c.Network.Timeout = 0 }},
		{"concurrency", func(c *Config) { c.Network.StylesheetConcurrency = 0 }},
		{"rate limit", func(c *Config) { c.Network.RateLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
