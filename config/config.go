// Package config loads domdebug settings from defaults, an optional config
// file and DOMDEBUG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// DOMDEBUG_LOGGER_LEVEL=debug.
const EnvPrefix = "DOMDEBUG"

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Inspector InspectorConfig `mapstructure:"inspector" yaml:"inspector"`
	Viewport  ViewportConfig  `mapstructure:"viewport" yaml:"viewport"`
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	Script    ScriptConfig    `mapstructure:"script" yaml:"script"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal color of each log level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// InspectorConfig configures the element inspector.
type InspectorConfig struct {
	// Prefix is put in front of every class and id the inspector adds.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	// Properties are the editable style properties, in camelCase.
	Properties     []string      `mapstructure:"properties" yaml:"properties"`
	CopyResetDelay time.Duration `mapstructure:"copy_reset_delay" yaml:"copy_reset_delay"`
}

// ViewportConfig is the initial page viewport in CSS pixels.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// NetworkConfig configures page and stylesheet loading.
type NetworkConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	// StylesheetConcurrency bounds parallel <link rel=stylesheet> fetches.
	StylesheetConcurrency int `mapstructure:"stylesheet_concurrency" yaml:"stylesheet_concurrency"`
	// RateLimit caps HTTP requests per second. Zero means no limit.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// ScriptConfig configures page scripts.
type ScriptConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Timeout bounds how long the event loop may run after load.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "domdebug")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Inspector --
	v.SetDefault("inspector.prefix", "dom-debug")
	v.SetDefault("inspector.properties", []string{
		"backgroundColor", "color", "fontSize", "padding", "border", "borderRadius",
	})
	v.SetDefault("inspector.copy_reset_delay", "1500ms")

	// -- Viewport --
	v.SetDefault("viewport.width", 1024)
	v.SetDefault("viewport.height", 768)

	// -- Network --
	v.SetDefault("network.timeout", "30s")
	v.SetDefault("network.user_agent", "domdebug/1.0")
	v.SetDefault("network.stylesheet_concurrency", 4)
	v.SetDefault("network.rate_limit", 0)

	// -- Script --
	v.SetDefault("script.enabled", true)
	v.SetDefault("script.timeout", "5s")
}

// New returns a viper instance with defaults and environment overrides.
// If path is not empty the file is read as well.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("expand config path %s: %w", path, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", expanded, err)
		}
	}
	return v, nil
}

// Load reads the configuration at path (which may be empty) and validates it.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Logger.LogFile != "" {
		logFile, err := homedir.Expand(cfg.Logger.LogFile)
		if err != nil {
			return nil, fmt.Errorf("expand logger.log_file: %w", err)
		}
		cfg.Logger.LogFile = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Inspector.Prefix == "" || strings.ContainsAny(c.Inspector.Prefix, " .#") {
		return fmt.Errorf("inspector.prefix %q is not a valid class name", c.Inspector.Prefix)
	}
	if len(c.Inspector.Properties) == 0 {
		return errors.New("inspector.properties must not be empty")
	}
	seen := make(map[string]bool, len(c.Inspector.Properties))
	for _, p := range c.Inspector.Properties {
		if p == "" || seen[p] {
			return fmt.Errorf("inspector.properties has an empty or repeated entry %q", p)
		}
		seen[p] = true
	}
	if c.Inspector.CopyResetDelay <= 0 {
		return errors.New("inspector.copy_reset_delay must be positive")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %gx%g", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Network.Timeout <= 0 {
		return errors.New("network.timeout must be positive")
	}
	if c.Network.StylesheetConcurrency <= 0 {
		return errors.New("network.stylesheet_concurrency must be a positive integer")
	}
	if c.Network.RateLimit < 0 {
		return errors.New("network.rate_limit must not be negative")
	}
	return nil
}
