package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config file constants (SonarQube S1192)
const (
	configName     = ".eslintsync"
	configFileName = configName + ".yaml"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	v.AddConfigPath(".")     // Current directory (highest priority)
	v.AddConfigPath("$HOME") // Home directory

	// ESLINTSYNC_CODACY_API_TOKEN -> codacy.api_token
	v.SetEnvPrefix("ESLINTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("codacy.api_token", "ESLINTSYNC_CODACY_API_TOKEN", "CODACY_API_TOKEN")

	return &Loader{v: v}
}

// SetConfigFile sets a specific config file to use.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
	l.v.SetConfigFile(path)
}

// Load loads the configuration from all sources. It does not validate:
// commands validate the sections they need after applying flag overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setDefaults(cfg)

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment variables can override it.
func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault("codacy.base_url", cfg.Codacy.BaseURL)
	l.v.SetDefault("codacy.api_token", cfg.Codacy.APIToken)
	l.v.SetDefault("codacy.provider", cfg.Codacy.Provider)
	l.v.SetDefault("codacy.organization", cfg.Codacy.Organization)
	l.v.SetDefault("codacy.timeout", cfg.Codacy.Timeout)
	l.v.SetDefault("codacy.rate_limit_rps", cfg.Codacy.RateLimitRPS)

	l.v.SetDefault("standard.name", cfg.Standard.Name)
	l.v.SetDefault("standard.languages", cfg.Standard.Languages)
	l.v.SetDefault("standard.eslint_config", cfg.Standard.ESLintConfig)
	l.v.SetDefault("standard.promote", cfg.Standard.Promote)

	l.v.SetDefault("sync.tool_uuid", cfg.Sync.ToolUUID)
	l.v.SetDefault("sync.pattern_prefix", cfg.Sync.PatternPrefix)
	l.v.SetDefault("sync.batch_size", cfg.Sync.BatchSize)
	l.v.SetDefault("sync.page_size", cfg.Sync.PageSize)
	l.v.SetDefault("sync.max_attempts", cfg.Sync.MaxAttempts)
	l.v.SetDefault("sync.retry_delay", cfg.Sync.RetryDelay)

	l.v.SetDefault("output.dir", cfg.Output.Dir)
	l.v.SetDefault("output.format", cfg.Output.Format)
	l.v.SetDefault("output.log_level", cfg.Output.LogLevel)
	l.v.SetDefault("output.metrics", cfg.Output.Metrics)

	l.v.SetDefault("state.dir", cfg.State.Dir)
	l.v.SetDefault("state.history", cfg.State.History)
	l.v.SetDefault("state.catalog_cache", cfg.State.CatalogCache)
	l.v.SetDefault("state.catalog_ttl", cfg.State.CatalogTTL)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// Load loads configuration from path, or from the default search paths
// when path is empty.
func Load(path string) (*Config, error) {
	loader := NewLoader()
	if path != "" {
		loader.SetConfigFile(path)
	}
	return loader.Load()
}

// FindConfigFile searches for a config file and returns its path.
// Returns empty string if no config file is found.
func FindConfigFile() string {
	if _, err := os.Stat(configFileName); err == nil {
		if abs, err := filepath.Abs(configFileName); err == nil {
			return abs
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
