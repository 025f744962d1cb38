package config

import (
	"time"
)

// Codacy constants for the ESLint tool.
const (
	DefaultBaseURL       = "https://app.codacy.com/api/v3"
	DefaultESLintTool    = "f8b29663-2cb2-498d-b923-a10c6a8c05cd"
	DefaultPatternPrefix = "ESLint8_"
)

// DefaultConfig returns a Config with sensible default values.
// Credentials, organization, standard name and ESLint path have no default.
func DefaultConfig() *Config {
	return &Config{
		Codacy:   defaultCodacyConfig(),
		Standard: defaultStandardConfig(),
		Sync:     defaultSyncConfig(),
		Output:   defaultOutputConfig(),
		State:    defaultStateConfig(),
	}
}

// defaultCodacyConfig returns the default API client configuration.
func defaultCodacyConfig() CodacyConfig {
	return CodacyConfig{
		BaseURL:      DefaultBaseURL,
		Timeout:      60 * time.Second,
		RateLimitRPS: 0,
	}
}

// defaultStandardConfig returns the default coding standard settings.
func defaultStandardConfig() StandardConfig {
	return StandardConfig{
		Languages: DefaultLanguages(),
		Promote:   true,
	}
}

// defaultSyncConfig returns the default batching and retry settings.
func defaultSyncConfig() SyncConfig {
	return SyncConfig{
		ToolUUID:      DefaultESLintTool,
		PatternPrefix: DefaultPatternPrefix,
		BatchSize:     1000,
		PageSize:      100,
		MaxAttempts:   3,
		RetryDelay:    2 * time.Second,
	}
}

// defaultOutputConfig returns the default output configuration.
func defaultOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:      ".",
		Format:   "json",
		LogLevel: "info",
	}
}

func defaultStateConfig() StateConfig {
	return StateConfig{
		History:      true,
		CatalogCache: true,
		CatalogTTL:   24 * time.Hour,
	}
}

// DefaultLanguages returns the languages a new standard is created for.
func DefaultLanguages() []string {
	return []string{"Javascript", "TypeScript"}
}

// ValidProviders returns the accepted git provider codes.
func ValidProviders() []string {
	return []string{"gh", "gl", "bb"}
}
