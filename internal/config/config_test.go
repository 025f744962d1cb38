package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".eslintrc.js")
	require.NoError(t, os.WriteFile(path, []byte("module.exports = { rules: {} };"), 0o600))

	cfg := DefaultConfig()
	cfg.Codacy.APIToken = "token"
	cfg.Codacy.Provider = "gh"
	cfg.Codacy.Organization = "acme"
	cfg.Standard.Name = "Frontend Standard"
	cfg.Standard.ESLintConfig = path
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, cfg.Codacy.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Codacy.Timeout)
	assert.Equal(t, []string{"Javascript", "TypeScript"}, cfg.Standard.Languages)
	assert.True(t, cfg.Standard.Promote)
	assert.Equal(t, DefaultESLintTool, cfg.Sync.ToolUUID)
	assert.Equal(t, "ESLint8_", cfg.Sync.PatternPrefix)
	assert.Equal(t, 1000, cfg.Sync.BatchSize)
	assert.Equal(t, 100, cfg.Sync.PageSize)
	assert.Equal(t, 3, cfg.Sync.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Sync.RetryDelay)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.State.History)
	assert.True(t, cfg.State.CatalogCache)
	assert.Equal(t, 24*time.Hour, cfg.State.CatalogTTL)
}

func TestStateResolveDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := StateConfig{}.ResolveDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".eslintsync"), dir)

	dir, err = StateConfig{Dir: "/var/lib/eslintsync"}.ResolveDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/eslintsync", dir)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid config", modify: func(*Config) {}},
		{
			name:    "missing token",
			modify:  func(c *Config) { c.Codacy.APIToken = "" },
			wantErr: "codacy.api_token: is required",
		},
		{
			name:    "unknown provider",
			modify:  func(c *Config) { c.Codacy.Provider = "github" },
			wantErr: "codacy.provider: must be one of: gh, gl, bb",
		},
		{
			name:    "missing organization",
			modify:  func(c *Config) { c.Codacy.Organization = "" },
			wantErr: "codacy.organization",
		},
		{
			name:    "missing name",
			modify:  func(c *Config) { c.Standard.Name = "" },
			wantErr: "standard.name",
		},
		{
			name:    "eslint config does not exist",
			modify:  func(c *Config) { c.Standard.ESLintConfig = "/nonexistent/.eslintrc.js" },
			wantErr: "standard.eslint_config: file not found",
		},
		{
			name:    "no languages",
			modify:  func(c *Config) { c.Standard.Languages = nil },
			wantErr: "standard.languages",
		},
		{
			name:    "zero batch size",
			modify:  func(c *Config) { c.Sync.BatchSize = 0 },
			wantErr: "sync.batch_size: must be at least 1",
		},
		{
			name:    "tool uuid malformed",
			modify:  func(c *Config) { c.Sync.ToolUUID = "eslint" },
			wantErr: "sync.tool_uuid",
		},
		{
			name:    "invalid output format",
			modify:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: "output.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateLocal_IgnoresCredentials(t *testing.T) {
	cfg := validConfig(t)
	cfg.Codacy.APIToken = ""
	cfg.Codacy.Provider = ""
	cfg.Standard.Name = ""

	assert.NoError(t, cfg.ValidateLocal())

	cfg.Standard.ESLintConfig = ""
	assert.ErrorContains(t, cfg.ValidateLocal(), "standard.eslint_config")
}

func TestValidateRemote_IgnoresStandardFile(t *testing.T) {
	cfg := validConfig(t)
	cfg.Standard.ESLintConfig = ""

	assert.NoError(t, cfg.ValidateRemote())

	cfg.Codacy.Provider = "sourceforge"
	assert.ErrorContains(t, cfg.ValidateRemote(), "codacy.provider")
}

func TestLoaderDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.Codacy.BaseURL)
	assert.Equal(t, 1000, cfg.Sync.BatchSize)
}

func TestLoaderEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ESLINTSYNC_CODACY_ORGANIZATION", "acme")
	t.Setenv("ESLINTSYNC_SYNC_BATCH_SIZE", "250")
	t.Setenv("CODACY_API_TOKEN", "from-env")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Codacy.Organization)
	assert.Equal(t, 250, cfg.Sync.BatchSize)
	assert.Equal(t, "from-env", cfg.Codacy.APIToken)
}

func TestLoaderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	content := `codacy:
  provider: gl
  organization: example
standard:
  name: Team Standard
  promote: false
sync:
  retry_delay: 500ms
state:
  history: false
  catalog_ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := NewLoader()
	loader.SetConfigFile(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "gl", cfg.Codacy.Provider)
	assert.Equal(t, "Team Standard", cfg.Standard.Name)
	assert.False(t, cfg.Standard.Promote)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.RetryDelay)
	assert.False(t, cfg.State.History)
	assert.True(t, cfg.State.CatalogCache)
	assert.Equal(t, time.Hour, cfg.State.CatalogTTL)
	assert.Equal(t, path, loader.ConfigFileUsed())
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "test.field", Message: "test message"}
	assert.Equal(t, "config validation error: test.field: test message", err.Error())
}
