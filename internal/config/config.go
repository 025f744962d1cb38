// Package config handles all configuration management for eslintsync.
//
// Configuration is loaded from multiple sources in order of precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (ESLINTSYNC_*, plus CODACY_API_TOKEN)
// 3. Configuration file (.eslintsync.yaml)
// 4. Default values (lowest priority)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the main configuration structure for eslintsync.
type Config struct {
	// Codacy configures access to the Codacy API
	Codacy CodacyConfig `mapstructure:"codacy" yaml:"codacy"`

	// Standard describes the coding standard to create
	Standard StandardConfig `mapstructure:"standard" yaml:"standard"`

	// Sync tunes pagination, batching and retries
	Sync SyncConfig `mapstructure:"sync" yaml:"sync"`

	// Output configures the result artifact and console output
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// State configures local run history and the catalog cache
	State StateConfig `mapstructure:"state" yaml:"state"`
}

// CodacyConfig configures the Codacy API client.
type CodacyConfig struct {
	// BaseURL is the API base URL
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`

	// APIToken is the account API token.
	// This should be set via environment variable, not config file
	APIToken string `mapstructure:"api_token" yaml:"api_token" validate:"required"`

	// Provider is the git provider code: gh, gl or bb
	Provider string `mapstructure:"provider" yaml:"provider" validate:"required,oneof=gh gl bb"`

	// Organization is the organization name on the git provider
	Organization string `mapstructure:"organization" yaml:"organization" validate:"required"`

	// Timeout is the per-request timeout
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`

	// RateLimitRPS is requests per second limit (0 = unlimited)
	RateLimitRPS int `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps" validate:"min=0"`
}

// StandardConfig describes the coding standard being created.
type StandardConfig struct {
	// Name is the coding standard name
	Name string `mapstructure:"name" yaml:"name" validate:"required"`

	// Languages are the languages the standard applies to
	Languages []string `mapstructure:"languages" yaml:"languages" validate:"min=1,dive,required"`

	// ESLintConfig is the path of the local ESLint configuration
	ESLintConfig string `mapstructure:"eslint_config" yaml:"eslint_config" validate:"required,file"`

	// Promote makes the new standard the organization default
	Promote bool `mapstructure:"promote" yaml:"promote"`
}

// SyncConfig tunes how patterns are pushed to Codacy.
type SyncConfig struct {
	// ToolUUID identifies the ESLint tool on Codacy
	ToolUUID string `mapstructure:"tool_uuid" yaml:"tool_uuid" validate:"required,uuid"`

	// PatternPrefix is the tool-version prefix of catalog pattern ids
	PatternPrefix string `mapstructure:"pattern_prefix" yaml:"pattern_prefix"`

	// BatchSize is the maximum number of patterns per update request
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size" validate:"min=1"`

	// PageSize is the page size used when listing patterns
	PageSize int `mapstructure:"page_size" yaml:"page_size" validate:"min=1,max=1000"`

	// MaxAttempts is the number of attempts per request, including the first
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts" validate:"min=1"`

	// RetryDelay is the fixed delay between attempts
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay" validate:"min=0"`
}

// OutputConfig configures output.
type OutputConfig struct {
	// Dir is the directory the result file is written to
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Format is the result file format: "json", "yaml", "markdown"
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json yaml markdown"`

	// LogLevel is the minimum log level: "debug", "info", "warn", "error"
	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`

	// Metrics prints collected request metrics at the end of a run
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
}

// StateConfig configures what eslintsync keeps between runs.
type StateConfig struct {
	// Dir holds the history database and the catalog cache.
	// Empty means ~/.eslintsync
	Dir string `mapstructure:"dir" yaml:"dir"`

	// History records every create run in a SQLite database
	History bool `mapstructure:"history" yaml:"history"`

	// CatalogCache keeps the last fetched pattern catalog per tool
	CatalogCache bool `mapstructure:"catalog_cache" yaml:"catalog_cache"`

	// CatalogTTL is how long a cached catalog stays usable
	CatalogTTL time.Duration `mapstructure:"catalog_ttl" yaml:"catalog_ttl" validate:"min=0"`
}

// ResolveDir returns the state directory, defaulting to ~/.eslintsync.
func (s StateConfig) ResolveDir() (string, error) {
	if s.Dir != "" {
		return s.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving state directory: %w", err)
	}
	return filepath.Join(home, ".eslintsync"), nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the full configuration needed to create a standard.
func (c *Config) Validate() error {
	return translateErrors(validate.Struct(c))
}

// Partial validation needs every leaf listed; naming a parent struct does
// not include its fields.
var (
	localFields = []string{"Standard.ESLintConfig", "Output.Format", "Output.LogLevel", "State.CatalogTTL"}

	remoteFields = []string{
		"Codacy.BaseURL", "Codacy.APIToken", "Codacy.Provider", "Codacy.Organization",
		"Codacy.Timeout", "Codacy.RateLimitRPS",
		"Sync.ToolUUID", "Sync.BatchSize", "Sync.PageSize", "Sync.MaxAttempts", "Sync.RetryDelay",
		"Output.LogLevel", "State.CatalogTTL",
	}
)

// ValidateLocal validates only the settings needed to read the ESLint
// configuration, for commands that never reach the network.
func (c *Config) ValidateLocal() error {
	return translateErrors(validate.StructPartial(c, localFields...))
}

// ValidateRemote validates the settings needed to talk to Codacy.
func (c *Config) ValidateRemote() error {
	return translateErrors(validate.StructPartial(c, remoteFields...))
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "config validation error: " + e.Field + ": " + e.Message
}

// translateErrors turns the first validator failure into a ValidationError
// keyed by the config file name of the field.
func translateErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fieldKey(fe.Namespace())
	return &ValidationError{Field: field, Message: describe(fe)}
}

var fieldKeys = map[string]string{
	"Codacy.BaseURL":        "codacy.base_url",
	"Codacy.APIToken":       "codacy.api_token",
	"Codacy.Provider":       "codacy.provider",
	"Codacy.Organization":   "codacy.organization",
	"Codacy.Timeout":        "codacy.timeout",
	"Codacy.RateLimitRPS":   "codacy.rate_limit_rps",
	"Standard.Name":         "standard.name",
	"Standard.Languages":    "standard.languages",
	"Standard.ESLintConfig": "standard.eslint_config",
	"Sync.ToolUUID":         "sync.tool_uuid",
	"Sync.BatchSize":        "sync.batch_size",
	"Sync.PageSize":         "sync.page_size",
	"Sync.MaxAttempts":      "sync.max_attempts",
	"Sync.RetryDelay":       "sync.retry_delay",
	"Output.Format":         "output.format",
	"Output.LogLevel":       "output.log_level",
	"State.CatalogTTL":      "state.catalog_ttl",
}

func fieldKey(namespace string) string {
	ns := strings.TrimPrefix(namespace, "Config.")
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	if key, ok := fieldKeys[ns]; ok {
		return key
	}
	return strings.ToLower(ns)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "file":
		return fmt.Sprintf("file not found: %v", fe.Value())
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a UUID"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
